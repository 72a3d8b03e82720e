// Package workspace provisions isolated checkouts of git refs.
//
// Each checkout lives in a linked, detached git worktree under a uniquely named
// temporary directory (e.g., /tmp/docversions-123456/v1.2.0). The Provisioner scopes
// the checkout to a callback and removes both the worktree and its temporary parent
// on every exit path, including callback errors and panics.
package workspace
