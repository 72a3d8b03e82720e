package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Signature is the author used for every fixture commit and annotated tag.
var Signature = &object.Signature{Name: "Docs Bot", Email: "docs@example.com", When: time.Unix(1700000000, 0)}

// Repo is a temporary repository checked out on main.
type Repo struct {
	t        *testing.T
	Dir      string
	Git      *git.Repository
	Worktree *git.Worktree
}

// NewRepo initializes an empty repository on branch main in a temp dir.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepoAt(t, t.TempDir())
}

// NewRepoAt initializes an empty repository on branch main in dir.
func NewRepoAt(t *testing.T, dir string) *Repo {
	t.Helper()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &Repo{t: t, Dir: dir, Git: repo, Worktree: wt}
}

// Commit writes files (slash-separated paths relative to the root), stages
// them and commits.
func (r *Repo) Commit(msg string, files map[string]string) plumbing.Hash {
	r.t.Helper()
	for name, content := range files {
		full := filepath.Join(r.Dir, filepath.FromSlash(name))
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(r.t, os.WriteFile(full, []byte(content), 0o600))
		_, err := r.Worktree.Add(name)
		require.NoError(r.t, err)
	}
	hash, err := r.Worktree.Commit(msg, &git.CommitOptions{Author: Signature})
	require.NoError(r.t, err)
	return hash
}

// Tag creates lightweight tags pointing at hash.
func (r *Repo) Tag(hash plumbing.Hash, names ...string) {
	r.t.Helper()
	for _, name := range names {
		_, err := r.Git.CreateTag(name, hash, nil)
		require.NoError(r.t, err)
	}
}

// AnnotatedTag creates an annotated tag pointing at hash.
func (r *Repo) AnnotatedTag(hash plumbing.Hash, name, message string) {
	r.t.Helper()
	_, err := r.Git.CreateTag(name, hash, &git.CreateTagOptions{Tagger: Signature, Message: message})
	require.NoError(r.t, err)
}

// Release commits files and tags that commit, returning the repository root.
func Release(t *testing.T, files map[string]string, tags ...string) string {
	t.Helper()
	r := NewRepo(t)
	r.Tag(r.Commit("docs", files), tags...)
	return r.Dir
}
