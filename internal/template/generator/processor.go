package generator

import (
	"bytes"
	"context"
	"errors"

	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/template/directive"
	"github.com/tacogips/hoppla/internal/template/render"
)

// Processor renders the content of template files.
type Processor interface {
	// Process renders content and extracts its header directive. It returns
	// the header block and the content to write.
	Process(ctx context.Context, origPath string, content []byte, data map[string]interface{}) (*directive.Block, []byte, error)
}

// FileProcessor implements Processor with a Renderer.
type FileProcessor struct {
	renderer render.Renderer
}

// NewFileProcessor creates a new FileProcessor.
func NewFileProcessor(renderer render.Renderer) *FileProcessor {
	return &FileProcessor{renderer: renderer}
}

// Process renders content. Binary content is returned unchanged. A render
// failure is logged and the unrendered text is used; a malformed header is
// returned as an error.
func (p *FileProcessor) Process(ctx context.Context, origPath string, content []byte, data map[string]interface{}) (*directive.Block, []byte, error) {
	if isBinaryContent(content) {
		log := debug.Component("generator")
		log.Warn().Str("path", origPath).Msg("Template file looks binary, copying it unrendered")
		return &directive.Block{}, content, nil
	}

	debug.Debug("[generator] Rendering template content: %s (size: %d bytes)", origPath, len(content))

	rendered, err := p.renderer.Render(ctx, origPath, content, data)
	if err != nil {
		var renderErr *render.RenderError
		if !errors.As(err, &renderErr) {
			return nil, nil, err
		}
		log := debug.Component("generator")
		log.Warn().Err(err).Str("path", origPath).Msg("Failed to render template, using unrendered content")
		rendered = content
	}

	header, body, err := directive.ExtractHeader(rendered, origPath)
	if err != nil {
		return nil, nil, err
	}

	debug.Debug("[generator] Rendered %s (input: %d bytes, output: %d bytes)", origPath, len(content), len(body))
	return header, body, nil
}

// isBinaryContent checks if content appears to be binary by looking for null bytes.
// Checks the first 512 bytes (or entire content if smaller).
func isBinaryContent(content []byte) bool {
	checkLen := len(content)
	if checkLen > 512 {
		checkLen = 512
	}

	return bytes.IndexByte(content[:checkLen], 0) != -1
}
