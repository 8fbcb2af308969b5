package directive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"regexp"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/template/render"
)

// headerPattern matches a header anchored at the start of the content,
// followed by at most one newline.
var headerPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(HeaderStart) + `([\s\S]*?)` + regexp.QuoteMeta(HeaderEnd) + `(?:\r?\n)?`)

// Parser reads directive files.
type Parser struct {
	fs       afero.Fs
	renderer render.Renderer
}

// NewParser creates a Parser that renders directive files before parsing.
func NewParser(fs afero.Fs, renderer render.Renderer) *Parser {
	return &Parser{fs: fs, renderer: renderer}
}

// ReadFile reads, renders and parses the directive file at path. A missing
// file yields an empty block. origPath is the template-relative path used in
// diagnostics. Render failures are logged and the unrendered text is parsed.
func (p *Parser) ReadFile(ctx context.Context, path, origPath string, data map[string]interface{}) (*Block, error) {
	content, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Block{}, nil
		}
		return nil, &SyntaxError{File: origPath, Message: "failed to read directive file", Cause: err}
	}

	rendered, err := p.renderer.Render(ctx, origPath, content, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log := debug.Component("directive")
		log.Warn().Err(err).Str("path", origPath).Msg("Failed to render directive file, parsing it unrendered")
		rendered = content
	}

	debug.Debug("[directive] Read %s (%d bytes)", origPath, len(rendered))
	return Parse(rendered, origPath)
}

// Parse parses a directive block body.
func Parse(content []byte, origPath string) (*Block, error) {
	block := &Block{}
	if len(bytes.TrimSpace(content)) == 0 {
		return block, nil
	}
	if err := yaml.Unmarshal(content, block); err != nil {
		return nil, &SyntaxError{File: origPath, Message: "invalid directive syntax", Cause: err}
	}
	return block, nil
}

// ExtractHeader looks for a header directive at the start of content. It
// returns the parsed block and the content with the header removed, or an
// empty block and the unchanged content when there is no header.
func ExtractHeader(content []byte, origPath string) (*Block, []byte, error) {
	loc := headerPattern.FindSubmatchIndex(content)
	if loc == nil {
		return &Block{}, content, nil
	}

	block, err := Parse(content[loc[2]:loc[3]], origPath)
	if err != nil {
		return nil, nil, err
	}

	stripped := append([]byte(nil), content[loc[1]:]...)
	debug.Debug("[directive] Extracted header from %s", origPath)
	return block, stripped, nil
}

// StripHeader returns content without its leading header block, if any. The
// header is not parsed.
func StripHeader(content []byte) []byte {
	loc := headerPattern.FindIndex(content)
	if loc == nil {
		return content
	}
	out := make([]byte, len(content)-loc[1])
	copy(out, content[loc[1]:])
	return out
}
