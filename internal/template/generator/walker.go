package generator

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/fsutil"
	"github.com/tacogips/hoppla/internal/template/directive"
	"github.com/tacogips/hoppla/internal/template/glob"
	"github.com/tacogips/hoppla/internal/template/hook"
	"github.com/tacogips/hoppla/internal/template/render"
)

// Walker transforms a working copy of a template tree in place. Entries are
// visited depth-first and strictly in listing order.
type Walker struct {
	fs         afero.Fs
	root       string
	processor  Processor
	directives *directive.Parser
	hooks      *hook.Runner

	raw     *glob.Matcher
	exclude *glob.Matcher
}

// NewWalker creates a Walker for the working copy at root.
func NewWalker(fs afero.Fs, root string, renderer render.Renderer, hooks *hook.Runner) *Walker {
	return &Walker{
		fs:         fs,
		root:       filepath.Clean(root),
		processor:  NewFileProcessor(renderer),
		directives: directive.NewParser(fs, renderer),
		hooks:      hooks,
	}
}

// target is the working state of one entry.
type target struct {
	// path is the entry's current location in the working copy.
	path string
	// origPath is relative to the template root. Globs match against it.
	origPath string
}

// directiveRef points at a sibling directive file.
type directiveRef struct {
	path     string
	origPath string
}

// generateCallbackError carries an error out of a generate callback so it is
// not reported twice.
type generateCallbackError struct {
	err error
}

func (e *generateCallbackError) Error() string { return e.err.Error() }
func (e *generateCallbackError) Unwrap() error { return e.err }

// Walk transforms the whole working copy with cfg.
func (w *Walker) Walk(ctx context.Context, cfg *config.Config) error {
	w.raw = glob.New(cfg.RawGlobs)
	w.exclude = glob.New(cfg.ExcludeGlobs)

	debug.Debug("[generator] Walking %s (rawGlobs=%v, excludeGlobs=%v)", w.root, w.raw.Patterns(), w.exclude.Patterns())
	return w.walkDir(ctx, cfg, w.root, "")
}

// walkDir processes the children of dir. Directive files are matched to
// their entries first and removed after every entry is done.
func (w *Walker) walkDir(ctx context.Context, cfg *config.Config, dir, origDir string) error {
	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return newGeneratorError(GeneratorWalkFailed, "failed to read directory", displayPath(origDir), err)
	}

	refs := make(map[string]directiveRef)
	content := make([]os.FileInfo, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if !info.IsDir() && IsDirectiveFile(name) {
			refs[directiveKey(name)] = directiveRef{
				path:     filepath.Join(dir, name),
				origPath: joinOrig(origDir, name),
			}
			continue
		}
		content = append(content, info)
	}

	for _, info := range content {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := info.Name()
		ref, ok := refs[StripTemplateSuffix(name)]
		if !ok {
			ref, ok = refs[name]
		}
		var refPtr *directiveRef
		if ok {
			refPtr = &ref
		}

		t := target{path: filepath.Join(dir, name), origPath: joinOrig(origDir, name)}
		if err := w.transformEntry(ctx, cfg, t, refPtr, true); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(refs))
	for key := range refs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ref := refs[key]
		if err := w.fs.Remove(ref.path); err != nil && !os.IsNotExist(err) {
			return newGeneratorError(GeneratorWalkFailed, "failed to remove directive file", ref.origPath, err)
		}
	}
	return nil
}

// transformEntry classifies one entry, acts on it and applies its rename.
func (w *Walker) transformEntry(ctx context.Context, cfg *config.Config, t target, ref *directiveRef, allowGenerate bool) error {
	if filepath.Base(t.path) == directive.RootFileName {
		debug.Debug("[generator] Removing run directive file %s", t.origPath)
		if err := w.fs.RemoveAll(t.path); err != nil {
			return newGeneratorError(GeneratorWalkFailed, "failed to remove directive file", t.origPath, err)
		}
		return nil
	}

	info, err := w.fs.Stat(t.path)
	if err != nil {
		return newGeneratorError(GeneratorWalkFailed, "failed to stat entry", t.origPath, err)
	}

	block := &directive.Block{}
	if ref != nil {
		block, err = w.directives.ReadFile(ctx, ref.path, ref.origPath, cfg.Data())
		if err != nil {
			logBrokenTemplate(ref.origPath, err)
			return err
		}
	}

	e, block, err := w.classify(ctx, cfg, t, info, block)
	if err != nil {
		return err
	}

	if _, excluded := e.(excludedEntry); !excluded && allowGenerate && block.Generate != "" {
		e = excludedEntry{}
		if err := w.generate(ctx, cfg, t, ref, block.Generate); err != nil {
			return err
		}
	}

	debug.Debug("[generator] %s classified as %s", t.origPath, kind(e))

	switch e := e.(type) {
	case excludedEntry:
		if err := w.fs.RemoveAll(t.path); err != nil {
			return newGeneratorError(GeneratorWalkFailed, "failed to remove excluded entry", t.origPath, err)
		}
		return nil

	case rawEntry:
		if e.dir {
			cfg.Cache.MarkRawDir(t.path)
		}
		if e.content != nil {
			if err := fsutil.ReplaceFile(w.fs, t.path, e.content, e.mode); err != nil {
				return newGeneratorError(GeneratorWalkFailed, "failed to write raw file", t.origPath, err)
			}
		}

	case directoryEntry:
		if err := w.walkDir(ctx, cfg, t.path, t.origPath); err != nil {
			return err
		}

	case templatedFile:
		if err := fsutil.ReplaceFile(w.fs, t.path, e.content, e.mode); err != nil {
			return newGeneratorError(GeneratorWalkFailed, "failed to write rendered file", t.origPath, err)
		}
	}

	return w.rename(cfg, t, block, info.IsDir())
}

// classify decides the terminal state of an entry. Templated files are
// rendered here and their header is merged over the sibling directive.
func (w *Walker) classify(ctx context.Context, cfg *config.Config, t target, info os.FileInfo, block *directive.Block) (entry, *directive.Block, error) {
	isDir := info.IsDir()

	raw, set := block.RawSet()
	if !set {
		raw = (!isDir && rawByDefault(info.Name())) || w.raw.Match(t.origPath, isDir)
	}

	var e entry
	switch {
	case raw:
		e = rawEntry{dir: isDir}

	case isDir:
		e = directoryEntry{}

	default:
		content, err := afero.ReadFile(w.fs, t.path)
		if err != nil {
			return nil, nil, newGeneratorError(GeneratorWalkFailed, "failed to read template file", t.origPath, err)
		}

		header, body, err := w.processor.Process(ctx, t.origPath, content, cfg.Data())
		if err != nil {
			logBrokenTemplate(t.origPath, err)
			return nil, nil, err
		}
		block = block.Merge(header)

		e = templatedFile{content: body, mode: info.Mode().Perm()}
		if headerRaw, ok := header.RawSet(); ok && headerRaw {
			e = rawEntry{content: directive.StripHeader(content), mode: info.Mode().Perm()}
		}
	}

	excluded, set := block.ExcludeSet()
	if !set {
		excluded = w.exclude.Match(t.origPath, isDir)
	}
	if excluded {
		e = excludedEntry{}
	}

	return e, block, nil
}

// generate runs the generate hook of an entry. Every callback copies the
// untransformed entry to "<n>_hoppla_<name>" and transforms the copy with
// its own input and generation disabled.
func (w *Walker) generate(ctx context.Context, cfg *config.Config, t target, ref *directiveRef, source string) error {
	env := hook.Env{
		Input:       cfg.Input,
		Template:    cfg.Template,
		Destination: cfg.Destination,
		Tmp:         w.root,
	}

	dir, name := filepath.Split(t.path)
	count := 0

	n, err := w.hooks.RunGenerate(ctx, source, t.origPath, env, func(ctx context.Context, input map[string]interface{}) error {
		count++
		copyPath := filepath.Join(dir, generatedName(count, name))
		debug.Debug("[generator] Generating %s from %s", filepath.Base(copyPath), t.origPath)

		if err := fsutil.CopyTree(w.fs, t.path, copyPath); err != nil {
			return &generateCallbackError{newGeneratorError(GeneratorWalkFailed, "failed to copy generated entry", t.origPath, err)}
		}

		genCfg, err := cfg.WithInput(input)
		if err != nil {
			return &generateCallbackError{newGeneratorError(GeneratorWalkFailed, "failed to clone config", t.origPath, err)}
		}

		if err := w.transformEntry(ctx, genCfg, target{path: copyPath, origPath: t.origPath}, ref, false); err != nil {
			return &generateCallbackError{err}
		}
		return nil
	})
	if err != nil {
		var cbErr *generateCallbackError
		if errors.As(err, &cbErr) {
			return cbErr.err
		}
		logBrokenTemplate(t.origPath, err)
		return err
	}

	debug.Debug("[generator] %s generated %d entries", t.origPath, n)
	return nil
}

// rename moves the entry to the name set by its directive. Entries without
// one lose their template suffix, raw ones included.
func (w *Walker) rename(cfg *config.Config, t target, block *directive.Block, isDir bool) error {
	name := block.TargetName(isDir)
	if name == "" {
		base := filepath.Base(t.path)
		name = StripTemplateSuffix(base)
		if name == base {
			return nil
		}
	}

	dest, err := resolveRenameTarget(w.root, t.path, name, isDir)
	if err != nil {
		return newGeneratorError(GeneratorPathError, "invalid rename target", t.origPath, err)
	}
	if dest == filepath.Clean(t.path) {
		return nil
	}

	debug.Debug("[generator] Renaming %s -> %s", t.origPath, name)
	if err := fsutil.Move(w.fs, t.path, dest); err != nil {
		return newGeneratorError(GeneratorWalkFailed, "failed to rename entry", t.origPath, err)
	}
	if isDir {
		cfg.Cache.RenameRawDir(t.path, dest)
	}
	return nil
}

// logBrokenTemplate reports a directive or hook failure with the template
// path the author knows.
func logBrokenTemplate(origPath string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	log := debug.Component("generator")
	log.Error().Err(err).Str("path", origPath).Msg("Broken template")
}

func joinOrig(origDir, name string) string {
	if origDir == "" {
		return name
	}
	return path.Join(origDir, name)
}

func displayPath(origPath string) string {
	if origPath == "" {
		return "."
	}
	return origPath
}
