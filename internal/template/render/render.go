// Package render renders template text. Tags are "<%" + expression + "%>"
// with a configurable delimiter character; the expression language is Go's
// text/template with the sprig function library. "<%=" is accepted as an
// output tag and "<%%" produces a literal "<%".
package render

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/debug"
)

// Renderer renders template content with a data context.
type Renderer interface {
	// Render renders content. name identifies the template in error messages.
	Render(ctx context.Context, name string, content []byte, data map[string]interface{}) ([]byte, error)
}

// DefaultRenderer implements Renderer on text/template.
type DefaultRenderer struct {
	fs   afero.Fs
	opts config.RenderOptions
}

// NewRenderer creates a DefaultRenderer. Include files are read from fs.
func NewRenderer(fs afero.Fs, opts config.RenderOptions) *DefaultRenderer {
	if opts.Delimiter == "" {
		opts.Delimiter = config.DefaultDelimiter
	}
	return &DefaultRenderer{fs: fs, opts: opts}
}

// Render implements Renderer.
func (r *DefaultRenderer) Render(ctx context.Context, name string, content []byte, data map[string]interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.render(name, content, data, &includeState{})
}

func (r *DefaultRenderer) leftDelim() string  { return "<" + r.opts.Delimiter }
func (r *DefaultRenderer) rightDelim() string { return r.opts.Delimiter + ">" }

func (r *DefaultRenderer) render(name string, content []byte, data map[string]interface{}, state *includeState) ([]byte, error) {
	left, right := r.leftDelim(), r.rightDelim()

	// Nothing to do for plain text.
	if !bytes.Contains(content, []byte(left)) {
		return content, nil
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	text := r.normalizeTags(string(content))

	funcs := sprig.TxtFuncMap()
	funcs["input"] = func() interface{} { return data["input"] }
	funcs["include"] = func(path string) (string, error) {
		return r.include(path, data, state)
	}

	tmpl, err := template.New(name).
		Delims(left, right).
		Option("missingkey=default").
		Funcs(funcs).
		Parse(text)
	if err != nil {
		return nil, newRenderError(InvalidSyntax, name, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, newRenderError(ExecutionFailed, name, "failed to execute template", err)
	}

	if r.opts.Debug {
		debug.Debug("[render] %s: rendered %d bytes into %d bytes", name, len(content), buf.Len())
	}
	return buf.Bytes(), nil
}

// normalizeTags rewrites the literal-tag escape and the "=" output marker
// into plain text/template actions.
func (r *DefaultRenderer) normalizeTags(text string) string {
	left, right := r.leftDelim(), r.rightDelim()

	escaped := left + r.opts.Delimiter
	if strings.Contains(text, escaped) {
		text = strings.ReplaceAll(text, escaped, left+`"`+left+`"`+right)
	}
	return strings.ReplaceAll(text, left+"=", left)
}
