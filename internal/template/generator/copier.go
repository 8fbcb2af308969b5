package generator

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/fsutil"
)

// Copier copies a transformed working copy into the destination.
type Copier interface {
	// Copy copies the children of src into dest. Per-entry failures are
	// recorded in the result and do not stop the copy.
	Copy(ctx context.Context, src, dest string) (*GenerateResult, error)
}

// FileCopier implements Copier.
type FileCopier struct {
	fs    afero.Fs
	force bool
	cache *config.Cache
}

// NewFileCopier creates a new FileCopier. Without force, existing
// destination entries are left untouched. Directories registered as raw in
// cache are copied as one unit.
func NewFileCopier(fs afero.Fs, force bool, cache *config.Cache) *FileCopier {
	if cache == nil {
		cache = config.NewCache()
	}
	return &FileCopier{fs: fs, force: force, cache: cache}
}

// copyRun is the state of one Copy call.
type copyRun struct {
	*FileCopier
	destRoot string
	result   *GenerateResult
}

// Copy implements Copier.
func (c *FileCopier) Copy(ctx context.Context, src, dest string) (*GenerateResult, error) {
	debug.Debug("[generator] Copying %s -> %s (force=%v)", src, dest, c.force)

	if err := c.fs.MkdirAll(dest, 0755); err != nil {
		return nil, newGeneratorError(GeneratorCopyFailed, "failed to create destination", dest, err)
	}

	run := &copyRun{
		FileCopier: c,
		destRoot:   filepath.Clean(dest),
		result:     newGenerateResult(),
	}
	if err := run.copyChildren(ctx, src, dest); err != nil {
		return run.result, err
	}

	debug.Debug("[generator] Copy complete: created=%d, overwritten=%d, skipped=%d, errors=%d",
		run.result.FilesCreated, run.result.FilesOverwritten, run.result.FilesSkipped, len(run.result.Errors))
	return run.result, nil
}

func (r *copyRun) copyChildren(ctx context.Context, src, dest string) error {
	infos, err := afero.ReadDir(r.fs, src)
	if err != nil {
		return newGeneratorError(GeneratorCopyFailed, "failed to read directory", src, err)
	}

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}

		from := filepath.Join(src, info.Name())
		to := filepath.Join(dest, info.Name())

		switch {
		case info.IsDir() && r.cache.IsRawDir(from):
			r.copyRawDir(from, to)
		case info.IsDir():
			if !r.prepareDir(to) {
				continue
			}
			if err := r.copyChildren(ctx, from, to); err != nil {
				return err
			}
		default:
			r.copyFile(from, to)
		}
	}
	return nil
}

// copyRawDir copies a raw directory as one unit. With force an existing
// destination is removed first.
func (r *copyRun) copyRawDir(from, to string) {
	rel := r.rel(to)
	log := debug.Component("copier")

	if fsutil.Exists(r.fs, to) {
		if !r.force {
			log.Warn().Str("path", rel).Msg("Folder already exists")
			r.result.FoldersSkipped++
			return
		}
		if err := r.fs.RemoveAll(to); err != nil {
			r.fail(rel, "failed to replace existing folder", err)
			return
		}
		r.result.FoldersOverwritten++
	} else {
		r.result.FoldersCreated++
	}

	if err := fsutil.CopyTree(r.fs, from, to); err != nil {
		r.fail(rel, "failed to copy folder", err)
		return
	}

	r.result.Files = append(r.result.Files, rel)
	log.Info().Str("path", rel).Msg("Folder created")
}

// prepareDir makes sure a regular directory exists at to. It reports false
// when the subtree has to be skipped.
func (r *copyRun) prepareDir(to string) bool {
	rel := r.rel(to)

	if fsutil.Exists(r.fs, to) && !fsutil.IsDir(r.fs, to) {
		if !r.force {
			log := debug.Component("copier")
			log.Warn().Str("path", rel).Msg("File already exists")
			r.result.FoldersSkipped++
			return false
		}
		if err := r.fs.Remove(to); err != nil {
			r.fail(rel, "failed to replace existing file", err)
			return false
		}
	}

	existed := fsutil.IsDir(r.fs, to)
	if err := r.fs.MkdirAll(to, 0755); err != nil {
		r.fail(rel, "failed to create directory", err)
		return false
	}
	if !existed {
		r.result.FoldersCreated++
		debug.Debug("[generator] Created directory %s", rel)
	}
	return true
}

// copyFile copies one file. With force a directory occupying the
// destination path is removed first.
func (r *copyRun) copyFile(from, to string) {
	rel := r.rel(to)
	log := debug.Component("copier")

	exists := fsutil.Exists(r.fs, to)
	if exists {
		if !r.force {
			log.Warn().Str("path", rel).Msgf("File already exists: %q", rel)
			r.result.FilesSkipped++
			return
		}
		if fsutil.IsDir(r.fs, to) {
			if err := r.fs.RemoveAll(to); err != nil {
				r.fail(rel, "failed to replace existing folder", err)
				return
			}
		}
	}

	if err := fsutil.CopyFile(r.fs, from, to); err != nil {
		r.fail(rel, "failed to copy file", err)
		return
	}

	if exists {
		r.result.FilesOverwritten++
	} else {
		r.result.FilesCreated++
	}
	r.result.Files = append(r.result.Files, rel)
	log.Info().Str("path", rel).Msg("File created")
}

func (r *copyRun) fail(rel, message string, err error) {
	genErr := newGeneratorError(GeneratorCopyFailed, message, rel, err)
	log := debug.Component("copier")
	log.Error().Err(err).Str("path", rel).Msg(message)
	r.result.Errors = append(r.result.Errors, genErr)
}

func (r *copyRun) rel(path string) string {
	rel, err := filepath.Rel(r.destRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
