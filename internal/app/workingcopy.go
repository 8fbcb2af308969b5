package app

import (
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/fsutil"
	"github.com/tacogips/hoppla/internal/template/glob"
)

const workingCopyPrefix = "hoppla-"

// createWorkingCopy copies the template tree into a new temporary directory
// under root (the OS temp dir when empty). Entries matching exclude are left
// out.
func createWorkingCopy(fs afero.Fs, root, template string, exclude *glob.Matcher) (string, error) {
	tmp, err := afero.TempDir(fs, root, workingCopyPrefix)
	if err != nil {
		return "", err
	}

	if err := copyTemplateTree(fs, template, tmp, "", exclude); err != nil {
		if rmErr := fs.RemoveAll(tmp); rmErr != nil {
			debug.Debug("[app] Failed to remove partial working copy %s: %v", tmp, rmErr)
		}
		return "", err
	}

	debug.Debug("[app] Working copy created at %s", tmp)
	return tmp, nil
}

func copyTemplateTree(fs afero.Fs, src, dst, origDir string, exclude *glob.Matcher) error {
	infos, err := afero.ReadDir(fs, src)
	if err != nil {
		return err
	}

	for _, info := range infos {
		rel := info.Name()
		if origDir != "" {
			rel = path.Join(origDir, info.Name())
		}
		if exclude.Match(rel, info.IsDir()) {
			debug.Debug("[app] Excluded from working copy: %s", rel)
			continue
		}

		from := filepath.Join(src, info.Name())
		to := filepath.Join(dst, info.Name())

		if !info.IsDir() {
			if err := fsutil.CopyFile(fs, from, to); err != nil {
				return err
			}
			continue
		}

		if err := fs.MkdirAll(to, info.Mode().Perm()|0700); err != nil {
			return err
		}
		if err := copyTemplateTree(fs, from, to, rel, exclude); err != nil {
			return err
		}
	}
	return nil
}
