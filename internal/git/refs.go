package git

import (
	"context"
	stderrors "errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ListTags returns the short names of all local tags.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	iter, err := c.repo.Tags()
	if err != nil {
		return nil, GitError("failed to list tags").WithCause(err).Build()
	}
	defer iter.Close()

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, GitError("failed to list tags").WithCause(err).Build()
	}
	return tags, nil
}

// CurrentBranch returns the checked-out branch name, or "" when HEAD is detached.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", GitError("failed to resolve HEAD").WithCause(err).Build()
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// RefExists reports whether ref (branch, tag, remote branch or full ref name) resolves locally.
func (c *Client) RefExists(ref string) bool {
	_, err := c.resolveCommit(ref)
	return err == nil
}

// PathExistsInRef reports whether p (relative to the repository root) exists in ref's tree.
func (c *Client) PathExistsInRef(ref, p string) (bool, error) {
	commit, err := c.resolveCommit(ref)
	if err != nil {
		return false, GitError("failed to resolve ref").
			WithCause(err).
			WithContext("ref", ref).
			Build()
	}

	clean := path.Clean(filepath.ToSlash(p))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "." || clean == "" {
		return true, nil
	}

	tree, err := commit.Tree()
	if err != nil {
		return false, GitError("failed to read tree").WithCause(err).WithContext("ref", ref).Build()
	}
	_, err = tree.FindEntry(clean)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, object.ErrEntryNotFound), stderrors.Is(err, object.ErrDirectoryNotFound):
		return false, nil
	default:
		return false, GitError("failed to look up path").
			WithCause(err).
			WithContext("ref", ref).
			WithContext("path", clean).
			Build()
	}
}

// resolveCommit resolves ref to a commit, peeling annotated tags.
func (c *Client) resolveCommit(ref string) (*object.Commit, error) {
	hash, err := c.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Err: err}
	}

	if commit, err := c.repo.CommitObject(*hash); err == nil {
		return commit, nil
	}
	tag, err := c.repo.TagObject(*hash)
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Err: err}
	}
	commit, err := tag.Commit()
	if err != nil {
		return nil, &RefNotFoundError{Ref: ref, Err: err}
	}
	return commit, nil
}
