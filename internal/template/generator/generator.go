package generator

import (
	"context"

	"github.com/spf13/afero"

	"github.com/tacogips/hoppla/internal/config"
	"github.com/tacogips/hoppla/internal/debug"
	"github.com/tacogips/hoppla/internal/template/hook"
	"github.com/tacogips/hoppla/internal/template/render"
)

// Generator turns a working copy of a template into output files.
type Generator interface {
	// Transform rewrites the working copy at workDir in place.
	Transform(ctx context.Context, cfg *config.Config, workDir string) error

	// Copy copies the transformed working copy into cfg.Destination.
	Copy(ctx context.Context, cfg *config.Config, workDir string, force bool) (*GenerateResult, error)
}

// GenerateResult contains copy statistics.
type GenerateResult struct {
	// FilesCreated is the number of new files created.
	FilesCreated int

	// FilesSkipped is the number of files skipped (already exist).
	FilesSkipped int

	// FilesOverwritten is the number of existing files overwritten.
	FilesOverwritten int

	// FoldersCreated counts new directories, raw or not.
	FoldersCreated int

	// FoldersSkipped counts raw directories left alone because they exist.
	FoldersSkipped int

	// FoldersOverwritten counts raw directories replaced under force.
	FoldersOverwritten int

	// Errors contains non-fatal errors encountered during the copy.
	Errors []error

	// Files contains destination-relative paths of copied files and raw folders.
	Files []string
}

func newGenerateResult() *GenerateResult {
	return &GenerateResult{
		Errors: []error{},
		Files:  []string{},
	}
}

// DefaultGenerator implements Generator.
type DefaultGenerator struct {
	fs       afero.Fs
	renderer render.Renderer
	hooks    *hook.Runner
}

// NewGenerator creates a new DefaultGenerator.
func NewGenerator(fs afero.Fs, renderer render.Renderer, hooks *hook.Runner) *DefaultGenerator {
	return &DefaultGenerator{
		fs:       fs,
		renderer: renderer,
		hooks:    hooks,
	}
}

// Transform implements Generator.
func (g *DefaultGenerator) Transform(ctx context.Context, cfg *config.Config, workDir string) error {
	debug.Debug("[generator] Starting transform: template=%s, workDir=%s", cfg.Template, workDir)
	return NewWalker(g.fs, workDir, g.renderer, g.hooks).Walk(ctx, cfg)
}

// Copy implements Generator.
func (g *DefaultGenerator) Copy(ctx context.Context, cfg *config.Config, workDir string, force bool) (*GenerateResult, error) {
	debug.Debug("[generator] Raw folders copied as a unit: %v", cfg.Cache.RawDirs())
	return NewFileCopier(g.fs, force, cfg.Cache).Copy(ctx, workDir, cfg.Destination)
}
