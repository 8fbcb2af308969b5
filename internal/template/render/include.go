package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// defaultMaxIncludeDepth is the default maximum include depth.
	defaultMaxIncludeDepth = 10
)

// includeState tracks the chain of files being included.
type includeState struct {
	depth   int
	stack   []string
	current string
}

// include renders the file at path with the same data. Paths starting with
// "/" and paths used from a top-level template are resolved against the
// include root; paths used from inside an included file are resolved
// against that file's directory.
func (r *DefaultRenderer) include(path string, data map[string]interface{}, state *includeState) (string, error) {
	if state.depth >= defaultMaxIncludeDepth {
		return "", newRenderError(MaxIncludeDepth, state.current,
			fmt.Sprintf("maximum include depth (%d) exceeded", defaultMaxIncludeDepth), nil)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return "", newRenderError(IncludeNotFound, state.current, "include path is empty", nil)
	}

	resolved, err := resolveIncludePath(path, r.opts.IncludeRoot, state.current)
	if err != nil {
		return "", newRenderError(IncludeNotFound, state.current, "failed to resolve include path", err)
	}

	if containsString(state.stack, resolved) {
		chain := append(append([]string(nil), state.stack...), resolved)
		return "", newRenderError(CircularInclude, resolved,
			fmt.Sprintf("circular include detected: %s", strings.Join(chain, " -> ")), nil)
	}

	content, err := afero.ReadFile(r.fs, resolved)
	if err != nil {
		return "", newRenderError(IncludeNotFound, resolved, "failed to read include file", err)
	}

	next := &includeState{
		depth:   state.depth + 1,
		stack:   append(append([]string(nil), state.stack...), resolved),
		current: resolved,
	}

	out, err := r.render(resolved, content, data, next)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// resolveIncludePath resolves an include path and verifies it stays inside
// the include root.
func resolveIncludePath(includePath, root, currentFile string) (string, error) {
	var resolved string
	if strings.HasPrefix(includePath, "/") || currentFile == "" {
		resolved = filepath.Join(root, strings.TrimPrefix(includePath, "/"))
	} else {
		resolved = filepath.Join(filepath.Dir(currentFile), includePath)
	}
	resolved = filepath.Clean(resolved)

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("include path escapes include root: %s", includePath)
	}
	return resolved, nil
}

// containsString checks if a slice contains a string.
func containsString(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
