package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tacogips/hoppla/internal/fsutil"
)

// resolveRenameTarget returns the absolute path an entry at path is renamed
// to. The name is resolved against the entry's parent directory and must
// stay inside root. A directory cannot be moved into itself.
func resolveRenameTarget(root, path, name string, isDir bool) (string, error) {
	if err := validateTargetName(name); err != nil {
		return "", err
	}

	target := filepath.Clean(filepath.Join(filepath.Dir(path), filepath.FromSlash(name)))

	if !fsutil.IsWithin(root, target) || target == filepath.Clean(root) {
		return "", fmt.Errorf("invalid target name: %q escapes the output root", name)
	}
	if isDir && target != filepath.Clean(path) && fsutil.IsWithin(path, target) {
		return "", fmt.Errorf("invalid target name: %q moves a directory into itself", name)
	}
	return target, nil
}

// validateTargetName validates a rename target taken from a directive.
func validateTargetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid target name: %q is empty", name)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("invalid target name: %q is an absolute path", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid target name: %q contains a null byte", name)
	}

	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." {
		return fmt.Errorf("invalid target name: %q resolves to the current directory", name)
	}
	return nil
}
