package config

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

// Overrides carries CLI flag values. Empty fields leave the configuration untouched.
type Overrides struct {
	Versions string
	// ClearVersions drops a configured versions.spec so only the current label is built.
	ClearVersions bool
	Branch        string
	Output        string
	Manifest      string
	OnNoMatch     string
	MetricsFile   string
}

// Apply merges non-empty overrides into cfg and validates the result.
func (o Overrides) Apply(cfg *Config) error {
	if o.ClearVersions {
		cfg.Versions.Spec = ""
	}
	if v := strings.TrimSpace(o.Versions); v != "" {
		cfg.Versions.Spec = v
	}
	if v := strings.TrimSpace(o.Branch); v != "" {
		cfg.Versions.DefaultBranch = v
	}
	if v := strings.TrimSpace(o.Output); v != "" {
		cfg.Output.Directory = v
	}
	if v := strings.TrimSpace(o.Manifest); v != "" {
		cfg.Output.Manifest = v
	}
	if v := strings.TrimSpace(o.MetricsFile); v != "" {
		cfg.Metrics.Textfile = v
	}
	if strings.TrimSpace(o.OnNoMatch) != "" {
		policy, err := ParseNoMatchPolicy(o.OnNoMatch)
		if err != nil {
			return ferrors.ValidationError(fmt.Sprintf("--on-no-match: %v", err)).Build()
		}
		cfg.Versions.OnNoMatch = policy
	}
	if err := ValidateConfig(cfg); err != nil {
		return ferrors.ValidationError("invalid command-line options").WithCause(err).Build()
	}
	return nil
}
