// Package config holds the resolved settings threaded through a single
// transformation run: paths, input data, render options, glob lists and the
// raw-directory registry shared by the walker and the copier.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/debug"
)

// DefaultDelimiter is the renderer tag character, giving "<% ... %>" tags.
const DefaultDelimiter = "%"

// RenderOptions configures the template renderer.
type RenderOptions struct {
	// Delimiter is the character placed inside the angle brackets of a tag.
	Delimiter string `koanf:"delimiter"`
	// IncludeRoot is the directory include paths are resolved against.
	IncludeRoot string `koanf:"includeRoot"`
	// Debug enables verbose renderer diagnostics.
	Debug bool `koanf:"debug"`
}

// Config is the resolved configuration for one run.
type Config struct {
	// Destination is the absolute output directory.
	Destination string
	// Template is the absolute template directory.
	Template string
	// Input is the data exposed to templates as "input".
	Input map[string]interface{}
	// Render holds the renderer options.
	Render RenderOptions
	// RawGlobs force matching entries to be copied verbatim.
	RawGlobs []string
	// ExcludeGlobs drop matching entries from the output.
	ExcludeGlobs []string
	// Cache is shared by every clone of the root config.
	Cache *Cache
}

// New validates the template directory, makes both paths absolute, creates
// the destination directory and layers the render overrides over the
// defaults.
func New(fs afero.Fs, destination, template string, input map[string]interface{}, overrides map[string]interface{}) (*Config, error) {
	templateAbs, err := filepath.Abs(template)
	if err != nil {
		return nil, NewConfigErrorWithCause(TemplateNotFound, template, "failed to resolve template path", err)
	}

	info, err := fs.Stat(templateAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigErrorWithCause(TemplateNotFound, templateAbs, "template not found", err)
		}
		return nil, NewConfigErrorWithCause(TemplateNotFound, templateAbs, "failed to access template", err)
	}
	if !info.IsDir() {
		return nil, NewConfigError(TemplateNotDirectory, templateAbs, "template is not a directory")
	}

	destinationAbs, err := filepath.Abs(destination)
	if err != nil {
		return nil, NewConfigErrorWithCause(DestinationFailed, destination, "failed to resolve destination path", err)
	}
	if err := fs.MkdirAll(destinationAbs, 0755); err != nil {
		return nil, NewConfigErrorWithCause(DestinationFailed, destinationAbs, "failed to create destination", err)
	}

	render, err := resolveRenderOptions(templateAbs, overrides)
	if err != nil {
		return nil, err
	}

	if input == nil {
		input = map[string]interface{}{}
	}

	cfg := &Config{
		Destination: destinationAbs,
		Template:    templateAbs,
		Input:       input,
		Render:      render,
		Cache:       NewCache(),
	}

	debug.Debug("[config] template=%s destination=%s delimiter=%q includeRoot=%s",
		cfg.Template, cfg.Destination, cfg.Render.Delimiter, cfg.Render.IncludeRoot)
	return cfg, nil
}

// resolveRenderOptions deep-merges caller overrides over the defaults.
func resolveRenderOptions(template string, overrides map[string]interface{}) (RenderOptions, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"delimiter":   DefaultDelimiter,
		"includeRoot": template,
		"debug":       false,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return RenderOptions{}, NewConfigErrorWithField(OptionsInvalid, "render", "failed to load defaults", err)
	}

	if len(overrides) > 0 {
		clean := make(map[string]interface{}, len(overrides))
		for key, value := range overrides {
			// Empty values keep the default.
			if s, ok := value.(string); ok && s == "" {
				continue
			}
			if value == nil {
				continue
			}
			clean[key] = value
		}
		if err := k.Load(confmap.Provider(clean, "."), nil); err != nil {
			return RenderOptions{}, NewConfigErrorWithField(OptionsInvalid, "render", "failed to load overrides", err)
		}
	}

	var opts RenderOptions
	if err := k.Unmarshal("", &opts); err != nil {
		return RenderOptions{}, NewConfigErrorWithField(OptionsInvalid, "render", "failed to decode render options", err)
	}

	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	if !filepath.IsAbs(opts.IncludeRoot) {
		opts.IncludeRoot = filepath.Join(template, opts.IncludeRoot)
	}
	opts.IncludeRoot = filepath.Clean(opts.IncludeRoot)

	return opts, nil
}

// Clone returns a deep copy of the config. Input and glob lists are copied;
// the cache is shared with the original.
func (c *Config) Clone() (*Config, error) {
	input, err := copyInput(c.Input)
	if err != nil {
		return nil, err
	}

	return &Config{
		Destination:  c.Destination,
		Template:     c.Template,
		Input:        input,
		Render:       c.Render,
		RawGlobs:     append([]string(nil), c.RawGlobs...),
		ExcludeGlobs: append([]string(nil), c.ExcludeGlobs...),
		Cache:        c.Cache,
	}, nil
}

// WithInput returns a clone whose input is replaced by a copy of input.
// A nil input keeps the current input.
func (c *Config) WithInput(input map[string]interface{}) (*Config, error) {
	clone, err := c.Clone()
	if err != nil {
		return nil, err
	}
	if input == nil {
		return clone, nil
	}

	replaced, err := copyInput(input)
	if err != nil {
		return nil, err
	}
	clone.Input = replaced
	return clone, nil
}

// MergeInput deep-merges over into the config input. Keys in over win.
func (c *Config) MergeInput(over map[string]interface{}) error {
	if len(over) == 0 {
		return nil
	}
	copied, err := copyInput(over)
	if err != nil {
		return err
	}
	if c.Input == nil {
		c.Input = map[string]interface{}{}
	}
	maps.Merge(copied, c.Input)
	return nil
}

// Data returns the rendering context for this config.
func (c *Config) Data() map[string]interface{} {
	return map[string]interface{}{
		"input": c.Input,
	}
}

func copyInput(input map[string]interface{}) (map[string]interface{}, error) {
	if input == nil {
		return map[string]interface{}{}, nil
	}
	copied, err := copystructure.Copy(input)
	if err != nil {
		return nil, fmt.Errorf("failed to copy input: %w", err)
	}
	return copied.(map[string]interface{}), nil
}
