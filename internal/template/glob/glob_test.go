package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		expected bool
	}{
		{"exact file", []string{"README.md"}, "README.md", false, true},
		{"double star below dir", []string{".git/**"}, ".git/objects/ab/cdef", false, true},
		{"double star matches dir itself", []string{".git/**"}, ".git", true, true},
		{"star does not cross slash", []string{"src/*.go"}, "src/pkg/a.go", false, false},
		{"base name fallback", []string{"*.png"}, "assets/img/logo.png", false, true},
		{"trailing slash selects dir", []string{"build/"}, "build", true, true},
		{"trailing slash ignores file", []string{"build/"}, "build", false, false},
		{"leading dot slash stripped", []string{"docs/*.md"}, "./docs/a.md", false, true},
		{"no match", []string{"*.txt"}, "main.go", false, false},
		{"empty list", nil, "main.go", false, false},
		{"invalid pattern ignored", []string{"[", "*.go"}, "main.go", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.patterns).Match(tt.path, tt.isDir))
		})
	}
}

func TestNew_DropsBlankAndInvalid(t *testing.T) {
	m := New([]string{"", "  ", "[", "**/*.md"})
	assert.Equal(t, []string{"**/*.md"}, m.Patterns())
	assert.False(t, m.Empty())
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	assert.True(t, m.Empty())
	assert.False(t, m.Match("a", false))
	assert.Nil(t, m.Patterns())
}
