package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitclient "git.home.luguber.info/inful/docversions/internal/git"
	"git.home.luguber.info/inful/docversions/internal/runner"
	"git.home.luguber.info/inful/docversions/internal/testutil"
)

type fakeWorktrees struct {
	addErr    error
	removeErr error
	added     []string
	removed   []string
	pruned    int
}

func (f *fakeWorktrees) AddWorktree(_ context.Context, path, ref string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, ref+"@"+path)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, "package.json"), []byte("{}"), 0o600)
}

func (f *fakeWorktrees) RemoveWorktree(_ context.Context, path string) error {
	f.removed = append(f.removed, path)
	if f.removeErr != nil {
		return f.removeErr
	}
	return os.RemoveAll(path)
}

func (f *fakeWorktrees) PruneWorktrees(context.Context) error {
	f.pruned++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary checkout directories left behind")
}

func TestWithCheckout_Success(t *testing.T) {
	base := t.TempDir()
	wt := &fakeWorktrees{}
	p := NewProvisioner(wt, base, quietLogger())

	var seen string
	err := p.WithCheckout(context.Background(), "refs/tags/v1.0.0", "feature/x", func(root string) error {
		seen = root
		_, statErr := os.Stat(filepath.Join(root, "package.json"))
		return statErr
	})
	require.NoError(t, err)

	assert.Equal(t, "feature_x", filepath.Base(seen), "label is sanitized")
	assert.Equal(t, []string{seen}, wt.removed)
	assert.Zero(t, wt.pruned)
	assertEmptyDir(t, base)
}

func TestWithCheckout_CallbackErrorStillCleansUp(t *testing.T) {
	base := t.TempDir()
	wt := &fakeWorktrees{}
	p := NewProvisioner(wt, base, quietLogger())
	buildErr := errors.New("npm ci failed")

	err := p.WithCheckout(context.Background(), "v1.0.0", "v1.0.0", func(string) error { return buildErr })

	assert.ErrorIs(t, err, buildErr)
	assert.Len(t, wt.removed, 1)
	assertEmptyDir(t, base)
}

func TestWithCheckout_PanicStillCleansUp(t *testing.T) {
	base := t.TempDir()
	wt := &fakeWorktrees{}
	p := NewProvisioner(wt, base, quietLogger())

	assert.Panics(t, func() {
		_ = p.WithCheckout(context.Background(), "v1.0.0", "v1.0.0", func(string) error { panic("boom") })
	})
	assert.Len(t, wt.removed, 1)
	assertEmptyDir(t, base)
}

func TestWithCheckout_AddFailure(t *testing.T) {
	base := t.TempDir()
	addErr := errors.New("invalid reference")
	wt := &fakeWorktrees{addErr: addErr}
	p := NewProvisioner(wt, base, quietLogger())

	called := false
	err := p.WithCheckout(context.Background(), "v9.9.9", "v9.9.9", func(string) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, addErr)
	assert.False(t, called)
	assert.Empty(t, wt.removed)
	assertEmptyDir(t, base)
}

func TestWithCheckout_CleanupErrorDoesNotMaskBuildError(t *testing.T) {
	base := t.TempDir()
	removeErr := errors.New("worktree locked")
	wt := &fakeWorktrees{removeErr: removeErr}
	p := NewProvisioner(wt, base, quietLogger())
	buildErr := errors.New("build output missing")

	err := p.WithCheckout(context.Background(), "v1.0.0", "v1.0.0", func(string) error { return buildErr })

	assert.ErrorIs(t, err, buildErr)
	assert.NotErrorIs(t, err, removeErr)
	assert.Equal(t, 1, wt.pruned, "dangling registration pruned")
	assertEmptyDir(t, base)
}

func TestWithCheckout_CleanupErrorAfterSuccessIsReturned(t *testing.T) {
	base := t.TempDir()
	removeErr := errors.New("worktree locked")
	wt := &fakeWorktrees{removeErr: removeErr}
	p := NewProvisioner(wt, base, quietLogger())

	err := p.WithCheckout(context.Background(), "v1.0.0", "v1.0.0", func(string) error { return nil })

	assert.ErrorIs(t, err, removeErr)
	assertEmptyDir(t, base)
}

func TestNestedPath(t *testing.T) {
	assert.Equal(t, "/tmp/co", NestedPath("/tmp/co", "."))
	assert.Equal(t, "/tmp/co", NestedPath("/tmp/co", ""))
	assert.Equal(t, filepath.Join("/tmp/co", "packages", "site"), NestedPath("/tmp/co", filepath.Join("packages", "site")))
}

func TestWithCheckout_RealGitWorktree(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	repoDir := testutil.Release(t, map[string]string{"site/content/index.md": "v1"}, "v1.0.0")

	client, err := gitclient.Open(repoDir, runner.NewExecRunner(quietLogger()), quietLogger())
	require.NoError(t, err)

	base := t.TempDir()
	p := NewProvisioner(client, base, quietLogger())
	err = p.WithCheckout(context.Background(), "v1.0.0", "v1.0.0", func(root string) error {
		data, err := os.ReadFile(filepath.Join(NestedPath(root, "site"), "content", "index.md"))
		if err != nil {
			return err
		}
		assert.Equal(t, "v1", string(data))
		return nil
	})
	require.NoError(t, err)
	assertEmptyDir(t, base)
}
