package git

import (
	"context"
	"log/slog"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/runner"
)

// Client performs git operations on one local repository.
type Client struct {
	repo   *git.Repository
	root   string
	runner runner.Runner
	logger *slog.Logger
}

var openOptions = &git.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true}

// Open opens the repository containing dir. cmdRunner executes the git binary.
func Open(dir string, cmdRunner runner.Runner, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, root, err := openRepository(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened repository", logfields.Path(root))
	return &Client{repo: repo, root: root, runner: cmdRunner, logger: logger}, nil
}

// FindRoot returns the working tree root of the repository containing dir.
func FindRoot(dir string) (string, error) {
	_, root, err := openRepository(dir)
	return root, err
}

func openRepository(dir string) (*git.Repository, string, error) {
	repo, err := git.PlainOpenWithOptions(dir, openOptions)
	if err != nil {
		return nil, "", GitError("not a git repository").
			WithCause(err).
			WithContext("path", dir).
			UserAction().
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", GitError("repository has no working tree").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return repo, wt.Filesystem.Root(), nil
}

// Root returns the absolute working tree root.
func (c *Client) Root() string { return c.root }

// reopen refreshes the go-git view after the git binary changed refs or added packfiles.
func (c *Client) reopen() error {
	repo, _, err := openRepository(c.root)
	if err != nil {
		return err
	}
	c.repo = repo
	return nil
}

// git runs the git binary in the repository root and returns its combined output.
func (c *Client) git(ctx context.Context, args ...string) ([]byte, error) {
	return c.runner.Run(ctx, runner.Command{Dir: c.root, Name: "git", Args: args})
}
