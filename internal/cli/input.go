package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/tacogips/hoppla/internal/debug"
)

// inputSource describes where the run input comes from.
type inputSource struct {
	// File is an input file path, empty when unused.
	File string
	// Inline is the --input value.
	Inline string
	// InlineSet reports whether --input was given. An empty value reads stdin.
	InlineSet bool
}

// loadInput reads the run input. Inline input is merged over file input.
func loadInput(src inputSource, stdin io.Reader) (map[string]interface{}, error) {
	input := map[string]interface{}{}

	if src.File != "" {
		fromFile, err := loadInputFile(src.File)
		if err != nil {
			return nil, err
		}
		input = fromFile
	}

	if !src.InlineSet {
		return input, nil
	}

	text := src.Inline
	if text == "" {
		debug.Debug("[cli] Reading input from stdin")
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read input from stdin: %w", err)
		}
		text = string(data)
	}

	inline, err := parseInput(text)
	if err != nil {
		return nil, err
	}
	maps.Merge(inline, input)
	return input, nil
}

// loadInputFile loads an input file with the koanf parser matching its
// extension.
func loadInputFile(path string) (map[string]interface{}, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		parser = kyaml.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return nil, fmt.Errorf("unsupported input file type: %s (use .yaml, .yml, .json or .toml)", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load input file %s: %w", path, err)
	}

	debug.Debug("[cli] Loaded input file %s (%d keys)", path, len(k.Keys()))
	return k.Raw(), nil
}

// parseInput parses YAML or JSON input text into an object.
func parseInput(text string) (map[string]interface{}, error) {
	input := map[string]interface{}{}
	if strings.TrimSpace(text) == "" {
		return input, nil
	}
	if err := yaml.Unmarshal([]byte(text), &input); err != nil {
		return nil, fmt.Errorf("invalid input (expected a YAML or JSON object): %w", err)
	}
	return input, nil
}
