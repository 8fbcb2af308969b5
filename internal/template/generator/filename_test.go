package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRenameTarget(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		target  string
		isDir   bool
		want    string
		wantErr string
	}{
		{
			name:   "sibling file",
			path:   "/w/src/a.txt.hop.tmpl",
			target: "a.txt",
			want:   "/w/src/a.txt",
		},
		{
			name:   "into subdirectory",
			path:   "/w/main.go.hop.tmpl",
			target: "cmd/app/main.go",
			want:   "/w/cmd/app/main.go",
		},
		{
			name:   "up one level stays inside root",
			path:   "/w/src/a.txt",
			target: "../b.txt",
			want:   "/w/b.txt",
		},
		{
			name:    "escapes root",
			path:    "/w/a.txt",
			target:  "../../etc/passwd",
			wantErr: "escapes the output root",
		},
		{
			name:    "root itself",
			path:    "/w/src",
			target:  "..",
			isDir:   true,
			wantErr: "escapes the output root",
		},
		{
			name:    "absolute",
			path:    "/w/a.txt",
			target:  "/etc/passwd",
			wantErr: "absolute path",
		},
		{
			name:    "empty",
			path:    "/w/a.txt",
			target:  "  ",
			wantErr: "is empty",
		},
		{
			name:    "current directory",
			path:    "/w/a.txt",
			target:  "./",
			wantErr: "current directory",
		},
		{
			name:    "directory into itself",
			path:    "/w/src",
			target:  "src/inner",
			isDir:   true,
			wantErr: "into itself",
		},
		{
			name:   "directory keeps name",
			path:   "/w/src",
			target: "src",
			isDir:  true,
			want:   "/w/src",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRenameTarget("/w", tt.path, tt.target, tt.isDir)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemplateNames(t *testing.T) {
	tests := []struct {
		name       string
		isTemplate bool
		stripped   string
		raw        bool
	}{
		{"greeting.txt.hop.ejs", true, "greeting.txt", false},
		{"main.go.hop.tmpl", true, "main.go", false},
		{".hop.tmpl", false, ".hop.tmpl", true},
		{"logo.png", false, "logo.png", true},
		{"hopplaconfig", false, "hopplaconfig", false},
		{"src.hopplaconfig", false, "src.hopplaconfig", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTemplate, IsTemplateFile(tt.name))
			assert.Equal(t, tt.stripped, StripTemplateSuffix(tt.name))
			assert.Equal(t, tt.raw, rawByDefault(tt.name))
		})
	}
}

func TestDirectiveNames(t *testing.T) {
	assert.True(t, IsDirectiveFile("src.hopplaconfig"))
	assert.False(t, IsDirectiveFile("hopplaconfig"))
	assert.Equal(t, "greeting.txt", directiveKey("greeting.txt.hopplaconfig"))
	assert.Equal(t, "3_hoppla_api", generatedName(3, "api"))
}
