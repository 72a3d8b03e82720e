package git

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

// GitError simplifies creating a git-scoped ClassifiedError.
func GitError(message string) *errors.ErrorBuilder {
	return errors.NewError(errors.CategoryGit, message).Fatal()
}

// RefNotFoundError reports a ref that does not resolve in the local repository.
type RefNotFoundError struct {
	Ref string
	Err error
}

func (e *RefNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ref %s not found: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("ref %s not found", e.Ref)
}

func (e *RefNotFoundError) Unwrap() error { return e.Err }

// AuthError reports a remote rejecting our credentials.
type AuthError struct {
	Op, Remote string
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.Remote, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// RemoteNotFoundError reports a missing remote repository or remote branch.
type RemoteNotFoundError struct {
	Op, Remote string
	Err        error
}

func (e *RemoteNotFoundError) Error() string {
	return fmt.Sprintf("%s not found %s: %v", e.Op, e.Remote, e.Err)
}
func (e *RemoteNotFoundError) Unwrap() error { return e.Err }

// classifyRemoteError wraps fetch failures into typed variants when the git output allows it.
func classifyRemoteError(op, remote string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication failed") ||
		strings.Contains(l, "could not read username") ||
		strings.Contains(l, "permission denied"):
		return &AuthError{Op: op, Remote: remote, Err: err}
	case strings.Contains(l, "couldn't find remote ref") ||
		strings.Contains(l, "repository not found") ||
		strings.Contains(l, "does not appear to be a git repository"):
		return &RemoteNotFoundError{Op: op, Remote: remote, Err: err}
	default:
		return err
	}
}
