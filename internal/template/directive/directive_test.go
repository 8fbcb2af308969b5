package directive

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/template/render"
)

func TestParse(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		block, err := Parse([]byte("fileName: main.go\nraw: false\ninput:\n  name: x\n"), "a.hop.tmpl")
		require.NoError(t, err)

		assert.Equal(t, "main.go", block.FileName)
		raw, ok := block.RawSet()
		assert.True(t, ok)
		assert.False(t, raw)
		_, ok = block.ExcludeSet()
		assert.False(t, ok)
		assert.Equal(t, map[string]interface{}{"name": "x"}, block.Input)
	})

	t.Run("json", func(t *testing.T) {
		block, err := Parse([]byte(`{"input": {"name": "World"}, "rawGlobs": [".git/**"]}`), RootFileName)
		require.NoError(t, err)

		assert.Equal(t, "World", block.Input["name"])
		assert.Equal(t, []string{".git/**"}, block.RawGlobs)
	})

	t.Run("empty", func(t *testing.T) {
		block, err := Parse([]byte("  \n"), "x")
		require.NoError(t, err)
		assert.True(t, block.IsEmpty())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Parse([]byte("raw: [unclosed"), "dir/x.hopplaconfig")
		require.Error(t, err)

		var syntaxErr *SyntaxError
		require.True(t, errors.As(err, &syntaxErr))
		assert.Equal(t, "dir/x.hopplaconfig", syntaxErr.File)
	})
}

func TestExtractHeader(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectedBody string
		expectedName string
	}{
		{
			name:         "no header",
			content:      "package main\n",
			expectedBody: "package main\n",
		},
		{
			name:         "header with one trailing newline",
			content:      "###hopplaconfig\nfileName: out.txt\nhopplaconfig###\n\nbody",
			expectedBody: "\nbody",
			expectedName: "out.txt",
		},
		{
			name:         "header not at start is ignored",
			content:      "x\n###hopplaconfig\nfileName: out.txt\nhopplaconfig###\n",
			expectedBody: "x\n###hopplaconfig\nfileName: out.txt\nhopplaconfig###\n",
		},
		{
			name:         "only first block is a header",
			content:      "###hopplaconfig\nfileName: a\nhopplaconfig###\n###hopplaconfig\nfileName: b\nhopplaconfig###\n",
			expectedBody: "###hopplaconfig\nfileName: b\nhopplaconfig###\n",
			expectedName: "a",
		},
		{
			name:         "crlf newline",
			content:      "###hopplaconfig\r\nfileName: w.txt\r\nhopplaconfig###\r\nbody",
			expectedBody: "body",
			expectedName: "w.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, body, err := ExtractHeader([]byte(tt.content), "f")
			require.NoError(t, err)
			assert.Equal(t, tt.expectedBody, string(body))
			assert.Equal(t, tt.expectedName, block.FileName)
		})
	}
}

func TestStripHeader(t *testing.T) {
	assert.Equal(t, "Hi <%= input.name %>", string(StripHeader([]byte("###hopplaconfig\nraw: true\nhopplaconfig###\nHi <%= input.name %>"))))
	assert.Equal(t, "body", string(StripHeader([]byte("###hopplaconfig\nfileName: [\nhopplaconfig###\nbody"))), "header is not parsed")
	assert.Equal(t, "no header", string(StripHeader([]byte("no header"))))
}

func TestExtractHeader_InvalidBody(t *testing.T) {
	_, _, err := ExtractHeader([]byte("###hopplaconfig\n: : :\n  - [\nhopplaconfig###\n"), "broken.hop.tmpl")
	require.Error(t, err)

	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestMerge(t *testing.T) {
	dir := &Block{
		FileName: "from-dir.txt",
		Raw:      Bool(true),
		Exclude:  Bool(false),
		Input: map[string]interface{}{
			"db": map[string]interface{}{"host": "a", "port": 1},
		},
	}
	header := &Block{
		Raw:   Bool(false),
		Input: map[string]interface{}{"db": map[string]interface{}{"host": "b"}},
	}

	merged := dir.Merge(header)

	assert.Equal(t, "from-dir.txt", merged.FileName)
	raw, _ := merged.RawSet()
	assert.False(t, raw, "header wins on conflicting keys")
	exclude, ok := merged.ExcludeSet()
	assert.True(t, ok)
	assert.False(t, exclude)
	assert.Equal(t, map[string]interface{}{"host": "b", "port": 1}, merged.Input["db"])

	// Originals are untouched.
	assert.Equal(t, "a", dir.Input["db"].(map[string]interface{})["host"])
	dirRaw, _ := dir.RawSet()
	assert.True(t, dirRaw)
}

func TestMerge_NilReceiverAndArgument(t *testing.T) {
	var nilBlock *Block
	merged := nilBlock.Merge(&Block{FileName: "x"})
	assert.Equal(t, "x", merged.FileName)

	merged = (&Block{DirName: "d"}).Merge(nil)
	assert.Equal(t, "d", merged.DirName)
}

func TestTargetName(t *testing.T) {
	assert.Equal(t, "", (*Block)(nil).TargetName(false))
	assert.Equal(t, "f", (&Block{FileName: "f", DirName: "d"}).TargetName(false))
	assert.Equal(t, "d", (&Block{FileName: "f", DirName: "d"}).TargetName(true))
	assert.Equal(t, "f", (&Block{FileName: "f"}).TargetName(true))
	assert.Equal(t, "d", (&Block{DirName: "d"}).TargetName(false))
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	renderer := render.NewRenderer(fs, config.RenderOptions{Delimiter: "%", IncludeRoot: "/tpl"})
	parser := NewParser(fs, renderer)
	data := map[string]interface{}{"input": map[string]interface{}{"name": "api"}}

	require.NoError(t, afero.WriteFile(fs, "/w/src.hopplaconfig", []byte("dirName: <%= input.name %>\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/w/bad.hopplaconfig", []byte("dirName: [\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/w/unrendered.hopplaconfig", []byte("fileName: x <% if %>\n"), 0644))

	t.Run("renders before parsing", func(t *testing.T) {
		block, err := parser.ReadFile(context.Background(), "/w/src.hopplaconfig", "src.hopplaconfig", data)
		require.NoError(t, err)
		assert.Equal(t, "api", block.DirName)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		block, err := parser.ReadFile(context.Background(), "/w/none.hopplaconfig", "none.hopplaconfig", data)
		require.NoError(t, err)
		assert.True(t, block.IsEmpty())
	})

	t.Run("syntax error carries original path", func(t *testing.T) {
		_, err := parser.ReadFile(context.Background(), "/w/bad.hopplaconfig", "sub/bad.hopplaconfig", data)
		require.Error(t, err)

		var syntaxErr *SyntaxError
		require.True(t, errors.As(err, &syntaxErr))
		assert.Equal(t, "sub/bad.hopplaconfig", syntaxErr.File)
	})

	t.Run("render failure falls back to raw text", func(t *testing.T) {
		block, err := parser.ReadFile(context.Background(), "/w/unrendered.hopplaconfig", "unrendered.hopplaconfig", data)
		require.NoError(t, err)
		assert.Equal(t, "x <% if %>", block.FileName)
	})
}
