// Package build orchestrates a versioned documentation run.
//
// A run resolves its targets (the current label plus every tag matched by the version
// spec), builds them one after another and, only when every target succeeded, rewrites
// the version manifest. The current label is built from the live workspace, or in
// production mode from a freshly fetched default branch when the workspace is on
// another branch. Tags and fetched branches are built inside temporary worktrees after
// their dependencies are installed.
//
// The CLI commands route through BuildService; the watch loop uses BuildCurrent.
package build
