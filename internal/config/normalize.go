package config

import (
	"fmt"
	"strings"
)

// normalizeConfig trims strings and case-folds enumerations. Unknown enum values are errors.
func normalizeConfig(cfg *Config) error {
	cfg.Version = strings.TrimSpace(cfg.Version)

	mode, err := ParseRunMode(string(cfg.Mode))
	if err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	cfg.Mode = mode

	v := &cfg.Versions
	v.Spec = strings.TrimSpace(v.Spec)
	v.DefaultBranch = strings.TrimSpace(v.DefaultBranch)
	v.Remote = strings.TrimSpace(v.Remote)
	v.CurrentLabel = strings.TrimSpace(v.CurrentLabel)
	policy, err := ParseNoMatchPolicy(string(v.OnNoMatch))
	if err != nil {
		return fmt.Errorf("versions.on_no_match: %w", err)
	}
	v.OnNoMatch = policy

	b := &cfg.Build
	b.Command = trimArgs(b.Command)
	b.ContentDir = strings.TrimSpace(b.ContentDir)
	b.ArtifactDir = strings.TrimSpace(b.ArtifactDir)
	b.ManifestFile = strings.TrimSpace(b.ManifestFile)

	manager, err := ParsePackageManager(string(cfg.Packages.Manager))
	if err != nil {
		return fmt.Errorf("packages.manager: %w", err)
	}
	cfg.Packages.Manager = manager
	cfg.Packages.Install = trimArgs(cfg.Packages.Install)
	cfg.Packages.InstallLocked = trimArgs(cfg.Packages.InstallLocked)

	cfg.Output.Directory = strings.TrimSpace(cfg.Output.Directory)
	cfg.Output.Manifest = strings.TrimSpace(cfg.Output.Manifest)
	cfg.Output.ExportName = strings.TrimSpace(cfg.Output.ExportName)
	cfg.Metrics.Textfile = strings.TrimSpace(cfg.Metrics.Textfile)

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

func trimArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
