// Package app wires the transformation pipeline: the run directive file,
// lifecycle hooks, the working copy, the walk and the destination copy.
package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/template/directive"
	"github.com/tacogips/hoppla/internal/template/generator"
	"github.com/tacogips/hoppla/internal/template/glob"
	"github.com/tacogips/hoppla/internal/template/hook"
	"github.com/tacogips/hoppla/internal/template/render"
)

// Options configures one transformation run.
type Options struct {
	// Template is the template directory.
	Template string
	// Destination is the output directory. It is created if missing.
	Destination string
	// Input is the caller's input. It wins over the template's defaults.
	Input map[string]interface{}
	// Force overwrites existing destination entries.
	Force bool
	// Render overrides render options by koanf key (delimiter, includeRoot, debug).
	Render map[string]interface{}
	// WorkRoot is where the working copy is created. Defaults to the OS temp dir.
	WorkRoot string
	// Fs is the filesystem to operate on. Defaults to the OS filesystem.
	Fs afero.Fs
	// Prompt, when set, is called with the merged input after the run
	// directive file is read. The answers it returns win over that input.
	Prompt func(input map[string]interface{}) (map[string]interface{}, error)
}

// Result holds the outcome of a run.
type Result struct {
	// Copy holds the destination copy statistics. Nil when the run failed
	// before the copy.
	Copy *generator.GenerateResult
	// Input is the final run input after the template defaults and hooks.
	Input map[string]interface{}
	// Messages are the messages returned by lifecycle hooks, in order.
	Messages []string
}

// run is the state of one Transform call.
type run struct {
	opts   Options
	fs     afero.Fs
	cfg    *config.Config
	root   *directive.Block
	hooks  *hook.Runner
	gen    generator.Generator
	tmp    string
	result *Result
}

// Transform renders the template at opts.Template into opts.Destination.
//
// The working copy is removed on every exit path and the finalize hook runs
// with the run error before Transform returns. The returned Result is non-nil
// once the run directive file has been read, including on failure.
func Transform(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	defer debug.LogDuration(start, "transform")

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	debug.Debug("[app] Transform start: template=%s, destination=%s, force=%v", opts.Template, opts.Destination, opts.Force)

	cfg, err := config.New(fs, opts.Destination, opts.Template, nil, opts.Render)
	if err != nil {
		return nil, err
	}

	renderer := render.NewRenderer(fs, cfg.Render)
	hooks := hook.NewRunner(fs, cfg.Template)

	r := &run{
		opts:   opts,
		fs:     fs,
		cfg:    cfg,
		hooks:  hooks,
		gen:    generator.NewGenerator(fs, renderer, hooks),
		result: &Result{},
	}

	if err := r.loadRootConfig(ctx, directive.NewParser(fs, renderer)); err != nil {
		return nil, err
	}

	if opts.Prompt != nil {
		answers, err := opts.Prompt(cfg.Input)
		if err != nil {
			return nil, NewAppError(RootConfigFailed, "failed to read input interactively", err)
		}
		if err := cfg.MergeInput(answers); err != nil {
			return nil, NewAppError(RootConfigFailed, "failed to merge answers", err)
		}
	}

	runErr := r.execute(ctx)
	r.cleanup()

	if err := r.finalize(ctx, runErr); err != nil && runErr == nil {
		runErr = err
	}

	r.result.Input = r.cfg.Input
	if runErr != nil {
		return r.result, runErr
	}

	log := debug.Component("app")
	log.Info().Str("destination", cfg.Destination).Msg("Transformation complete")
	return r.result, nil
}

// loadRootConfig reads the run directive file. The template's input is the
// base and the caller's input is merged on top.
func (r *run) loadRootConfig(ctx context.Context, parser *directive.Parser) error {
	path := filepath.Join(r.cfg.Template, directive.RootFileName)
	data := map[string]interface{}{"input": r.opts.Input}

	root, err := parser.ReadFile(ctx, path, directive.RootFileName, data)
	if err != nil {
		return NewAppError(RootConfigFailed, "failed to read "+directive.RootFileName, err)
	}
	r.root = root

	if root.Input != nil {
		r.cfg.Input = root.Input
	}
	if err := r.cfg.MergeInput(r.opts.Input); err != nil {
		return NewAppError(RootConfigFailed, "failed to merge input", err)
	}

	if root.RawGlobs != nil {
		r.cfg.RawGlobs = root.RawGlobs
	}
	if root.ExcludeGlobs != nil {
		r.cfg.ExcludeGlobs = root.ExcludeGlobs
	}

	debug.DebugJSON("[app] Run input", r.cfg.Input)
	return nil
}

func (r *run) execute(ctx context.Context) error {
	if err := r.lifecycle(ctx, hook.Init, r.root.Init, nil); err != nil {
		return err
	}

	tmp, err := createWorkingCopy(r.fs, r.opts.WorkRoot, r.cfg.Template, glob.New(r.cfg.ExcludeGlobs))
	if err != nil {
		return NewAppError(WorkingCopyFailed, "failed to create working copy", err)
	}
	r.tmp = tmp

	if err := r.lifecycle(ctx, hook.Prepare, r.root.Prepare, nil); err != nil {
		return err
	}

	if err := r.gen.Transform(ctx, r.cfg, r.tmp); err != nil {
		return NewAppError(TransformFailed, "failed to transform template", err)
	}

	if err := r.lifecycle(ctx, hook.BeforeCopy, r.root.BeforeCopy, nil); err != nil {
		return err
	}

	copied, err := r.gen.Copy(ctx, r.cfg, r.tmp, r.opts.Force)
	r.result.Copy = copied
	if err != nil {
		return NewAppError(CopyFailed, "failed to copy to destination", err)
	}
	return nil
}

// lifecycle runs a lifecycle hook when source is set. Input returned by init
// and prepare is merged into the run input.
func (r *run) lifecycle(ctx context.Context, kind hook.Kind, source string, runErr error) error {
	if source == "" {
		return nil
	}

	debug.Debug("[app] Running %s hook", kind)
	res, err := r.hooks.RunLifecycle(ctx, kind, source, directive.RootFileName, hook.Env{
		Input:       r.cfg.Input,
		Template:    r.cfg.Template,
		Destination: r.cfg.Destination,
		Tmp:         r.tmp,
		Err:         runErr,
	})
	if err != nil {
		if kind == hook.Finalize {
			return NewAppError(FinalizeFailed, "finalize hook failed", err)
		}
		return NewAppError(TransformFailed, string(kind)+" hook failed", err)
	}

	if res.Message != "" {
		r.result.Messages = append(r.result.Messages, res.Message)
		log := debug.Component("app")
		log.Info().Str("hook", string(kind)).Msg(res.Message)
	}

	if res.Input != nil {
		if kind != hook.Init && kind != hook.Prepare {
			debug.Debug("[app] Ignoring input returned by %s hook", kind)
			return nil
		}
		if err := r.cfg.MergeInput(res.Input); err != nil {
			return NewAppError(TransformFailed, "failed to merge "+string(kind)+" hook input", err)
		}
	}
	return nil
}

func (r *run) finalize(ctx context.Context, runErr error) error {
	if runErr != nil {
		log := debug.Component("app")
		log.Error().Err(runErr).Msg("Transformation failed")
	}
	// The working copy is already gone. A canceled context must not skip
	// finalize.
	return r.lifecycle(context.WithoutCancel(ctx), hook.Finalize, r.root.Finalize, runErr)
}

// cleanup removes the working copy.
func (r *run) cleanup() {
	if r.tmp == "" {
		return
	}
	if err := r.fs.RemoveAll(r.tmp); err != nil {
		log := debug.Component("app")
		log.Warn().Err(err).Str("path", r.tmp).Msg("Failed to remove working copy")
	}
	debug.Debug("[app] Removed working copy %s", r.tmp)
	r.tmp = ""
}
