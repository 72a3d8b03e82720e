package config

import "errors"

// ErrMissingArgument reports that a flag required by the selected run mode was not given.
var ErrMissingArgument = errors.New("missing required argument")
