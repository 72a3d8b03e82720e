// Package docsbuild runs the external content-build command for one source tree and
// copies its artifact directory into a version's output directory.
package docsbuild

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docversions/internal/config"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/fsutil"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/runner"
)

var (
	ErrMissingWorkspace   = errors.New("source directory does not exist")
	ErrMissingContent     = errors.New("content directory does not exist")
	ErrMissingManifest    = errors.New("package manifest does not exist")
	ErrBuildOutputMissing = errors.New("build command produced no output directory")
	ErrOutputOverlap      = errors.New("output directory overlaps the build output directory")
)

// Request describes one build.
type Request struct {
	SourceDir string
	// OutputDir is reset before the build and receives a copy of the artifact directory.
	OutputDir string
	// RequireManifest is set for builds from checked-out refs.
	RequireManifest bool
}

// Builder builds documentation trees with the configured command.
type Builder struct {
	runner runner.Runner
	cfg    config.BuildConfig
	logger *slog.Logger
}

// NewBuilder creates a builder.
func NewBuilder(r runner.Runner, cfg config.BuildConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{runner: r, cfg: cfg, logger: logger}
}

// Build checks preconditions, resets req.OutputDir, runs the build command in
// req.SourceDir and copies the artifact directory to <OutputDir>/<artifact base name>.
// No command runs when a precondition fails.
func (b *Builder) Build(ctx context.Context, req Request) error {
	if err := b.checkPreconditions(req); err != nil {
		return err
	}

	if err := fsutil.ResetDir(req.OutputDir); err != nil {
		return ferrors.FileSystemError("failed to reset output directory").
			WithCause(err).WithContext("path", req.OutputDir).Build()
	}

	cmd := runner.Command{Dir: req.SourceDir, Name: b.cfg.Command[0], Args: b.cfg.Command[1:], Stream: true}
	b.logger.Info("Building documentation", logfields.Command(cmd.String()), logfields.Path(req.SourceDir))
	start := time.Now()
	if _, err := b.runner.Run(ctx, cmd); err != nil {
		return ferrors.CommandError("documentation build command failed").
			WithCause(err).
			WithContext("command", cmd.String()).
			WithContext("path", req.SourceDir).
			Build()
	}

	artifact := b.artifactDir(req)
	if !fsutil.IsDir(artifact) {
		return ferrors.BuildError("build finished without producing its output directory").
			WithCause(ErrBuildOutputMissing).
			WithContext("path", artifact).
			Build()
	}

	dest := b.destination(req)
	if err := fsutil.ResetDir(dest); err != nil {
		return ferrors.FileSystemError("failed to reset artifact destination").
			WithCause(err).WithContext("path", dest).Build()
	}
	if err := fsutil.CopyDir(artifact, dest); err != nil {
		return ferrors.FileSystemError("failed to copy build output").
			WithCause(err).
			WithContext("from", artifact).
			WithContext("to", dest).
			Build()
	}

	b.logger.Info("Documentation built", logfields.Path(dest), logfields.Duration(time.Since(start)))
	return nil
}

func (b *Builder) checkPreconditions(req Request) error {
	if len(b.cfg.Command) == 0 {
		return ferrors.ConfigError("build command is empty").Build()
	}
	if !fsutil.IsDir(req.SourceDir) {
		return ferrors.BuildError("cannot build documentation").
			WithCause(ErrMissingWorkspace).WithContext("path", req.SourceDir).Build()
	}
	content := filepath.Join(req.SourceDir, b.cfg.ContentDir)
	if !fsutil.IsDir(content) {
		return ferrors.BuildError("cannot build documentation").
			WithCause(ErrMissingContent).WithContext("path", content).Build()
	}
	// The copy would recurse into itself, and resetting the output would delete the source.
	artifact, dest := b.artifactDir(req), b.destination(req)
	if fsutil.Within(artifact, dest) || fsutil.Within(req.OutputDir, artifact) {
		return ferrors.BuildError("output directory must not overlap the build output directory").
			WithCause(ErrOutputOverlap).
			WithContext("output", req.OutputDir).
			WithContext("artifact", artifact).
			Build()
	}
	if req.RequireManifest {
		manifest := filepath.Join(req.SourceDir, b.cfg.ManifestFile)
		if !fsutil.Exists(manifest) {
			return ferrors.BuildError("cannot build documentation").
				WithCause(ErrMissingManifest).WithContext("path", manifest).Build()
		}
	}
	return nil
}

func (b *Builder) artifactDir(req Request) string {
	return filepath.Join(req.SourceDir, b.cfg.ArtifactDir)
}

func (b *Builder) destination(req Request) string {
	return filepath.Join(req.OutputDir, filepath.Base(filepath.Clean(b.cfg.ArtifactDir)))
}
