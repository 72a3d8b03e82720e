package workspace

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/versioning"
)

// Worktrees creates and removes linked worktrees. Implemented by *git.Client.
type Worktrees interface {
	AddWorktree(ctx context.Context, path, ref string) error
	RemoveWorktree(ctx context.Context, path string) error
	PruneWorktrees(ctx context.Context) error
}

// Provisioner materializes refs into temporary detached checkouts.
type Provisioner struct {
	worktrees Worktrees
	baseDir   string
	logger    *slog.Logger
}

// NewProvisioner creates a provisioner placing checkouts under baseDir (os.TempDir() when empty).
func NewProvisioner(worktrees Worktrees, baseDir string, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{worktrees: worktrees, baseDir: baseDir, logger: logger}
}

// WithCheckout checks ref out into <temp>/<sanitized label>, calls fn with that path and
// removes the checkout and its temporary parent afterwards.
//
// An error from fn is always the one returned. Cleanup failures are logged; they are
// only returned when fn succeeded.
func (p *Provisioner) WithCheckout(ctx context.Context, ref, label string, fn func(root string) error) (err error) {
	mgr := NewManager(p.baseDir, p.logger)
	if err := mgr.Create(); err != nil {
		return ferrors.FileSystemError("failed to create checkout directory").WithCause(err).Build()
	}

	path := filepath.Join(mgr.GetPath(), versioning.SanitizeLabel(label))
	log := p.logger.With(logfields.Ref(ref), logfields.Label(label))

	if err := p.worktrees.AddWorktree(ctx, path, ref); err != nil {
		if cerr := mgr.Cleanup(); cerr != nil {
			log.Warn("Failed to remove checkout directory", logfields.Path(mgr.GetPath()), logfields.Error(cerr))
		}
		return err
	}
	log.Info("Checked out ref", logfields.Path(path))

	defer func() {
		cerr := p.release(context.WithoutCancel(ctx), path, mgr)
		if cerr == nil {
			return
		}
		if err != nil {
			log.Warn("Checkout cleanup failed after build error", logfields.Error(cerr))
			return
		}
		log.Error("Checkout cleanup failed", logfields.Error(cerr))
		err = cerr
	}()

	return fn(path)
}

// release removes the worktree and the temporary parent. Every step is attempted.
func (p *Provisioner) release(ctx context.Context, path string, mgr *Manager) error {
	removeErr := p.worktrees.RemoveWorktree(ctx, path)

	var cleanupErr error
	if err := mgr.Cleanup(); err != nil {
		cleanupErr = ferrors.FileSystemError("failed to remove checkout directory").WithCause(err).Build()
	}

	var pruneErr error
	if removeErr != nil {
		// The directory is gone now; drop the dangling worktree registration.
		pruneErr = p.worktrees.PruneWorktrees(ctx)
	}

	if removeErr == nil && cleanupErr == nil && pruneErr == nil {
		p.logger.Debug("Removed checkout", logfields.Path(path))
	}
	return errors.Join(removeErr, cleanupErr, pruneErr)
}

// NestedPath returns the directory inside a checkout that corresponds to the workspace
// path rel (relative to the repository root).
func NestedPath(checkoutRoot, rel string) string {
	if rel == "" || rel == "." {
		return checkoutRoot
	}
	return filepath.Join(checkoutRoot, rel)
}
