// Package git is docversions' version-control collaborator.
//
// Read-only repository queries run in-process with go-git:
//   - Repository root detection from any subdirectory (or linked worktree)
//   - Tag listing and current branch resolution
//   - Ref existence and path-in-tree checks against any revision
//
// Operations that must share credentials and the object store with the user's own git
// (fetching, creating and removing linked worktrees) shell out to the git binary
// through a runner.Runner.
package git
