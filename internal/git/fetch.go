package git

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// Fetch updates refs/remotes/<remote>/<branch> from the remote, fetching tags and pruning
// stale remote-tracking refs. No retry is attempted.
func (c *Client) Fetch(ctx context.Context, remote, branch string) error {
	refspec := fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch)
	c.logger.Info("Fetching default branch", logfields.Ref(remote+"/"+branch))

	if _, err := c.git(ctx, "fetch", "--tags", "--prune", remote, refspec); err != nil {
		return GitError("fetch failed").
			WithCause(classifyRemoteError("fetch", remote, err)).
			WithContext("remote", remote).
			WithContext("branch", branch).
			Build()
	}
	return c.reopen()
}

// RemoteBranchRef returns the full remote-tracking ref name for branch.
func RemoteBranchRef(remote, branch string) string {
	return fmt.Sprintf("refs/remotes/%s/%s", remote, branch)
}
