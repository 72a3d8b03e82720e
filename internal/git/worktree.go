package git

import (
	"context"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// AddWorktree checks ref out, detached, into a new linked worktree at path.
// The caller's own checkout is not touched.
func (c *Client) AddWorktree(ctx context.Context, path, ref string) error {
	c.logger.Debug("Adding worktree", logfields.Ref(ref), logfields.Path(path))
	if _, err := c.git(ctx, "worktree", "add", "--detach", path, ref); err != nil {
		return GitError("failed to create worktree").
			WithCause(err).
			WithContext("ref", ref).
			WithContext("path", path).
			Build()
	}
	return nil
}

// RemoveWorktree force-removes the linked worktree at path and prunes stale worktree metadata.
func (c *Client) RemoveWorktree(ctx context.Context, path string) error {
	c.logger.Debug("Removing worktree", logfields.Path(path))
	if _, err := c.git(ctx, "worktree", "remove", "--force", path); err != nil {
		return GitError("failed to remove worktree").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return c.PruneWorktrees(ctx)
}

// PruneWorktrees drops metadata of worktrees whose directories no longer exist.
func (c *Client) PruneWorktrees(ctx context.Context) error {
	if _, err := c.git(ctx, "worktree", "prune"); err != nil {
		return GitError("failed to prune worktrees").WithCause(err).Build()
	}
	return nil
}
