package build

import "errors"

// ErrLabelCollision reports two targets that would write the same output directory.
var ErrLabelCollision = errors.New("build label collision")

// ErrModeRequiresWorkspace is returned by BuildCurrent outside development and pullRequest modes.
var ErrModeRequiresWorkspace = errors.New("mode does not build from the workspace")
