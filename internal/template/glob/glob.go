// Package glob decides whether a template-relative path matches any of a
// list of glob patterns. Patterns use doublestar syntax ("**" crosses
// directory boundaries). A pattern without a slash also matches against the
// base name, so "*.png" catches images at any depth.
package glob

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tacogips/hoppla/internal/debug"
)

// Matcher matches relative paths against an ordered list of patterns.
type Matcher struct {
	patterns []string
}

// New creates a Matcher. Invalid patterns are dropped with a warning.
func New(patterns []string) *Matcher {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			log := debug.Component("glob")
			log.Warn().Str("pattern", p).Msg("Ignoring invalid glob pattern")
			continue
		}
		valid = append(valid, p)
	}
	return &Matcher{patterns: valid}
}

// Patterns returns the patterns in use.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Match reports whether rel matches any pattern. Directories are also tried
// with a trailing slash so "build/" style patterns select them.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m.Empty() {
		return false
	}

	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}

	for _, pattern := range m.patterns {
		if matchOne(pattern, rel) || (isDir && matchOne(pattern, rel+"/")) {
			debug.Debug("[glob] %s matched pattern %s", rel, pattern)
			return true
		}
		if !strings.Contains(pattern, "/") && matchOne(pattern, base) {
			debug.Debug("[glob] %s matched pattern %s by base name", rel, pattern)
			return true
		}
	}
	return false
}

func matchOne(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}
