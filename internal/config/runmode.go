package config

import (
	"strings"

	"git.home.luguber.info/inful/docversions/internal/foundation/normalization"
)

// RunMode selects how the current label is built.
type RunMode string

const (
	// ModeAuto detects the mode from CI environment variables.
	ModeAuto RunMode = "auto"
	// ModeDevelopment builds the current label from the live workspace.
	ModeDevelopment RunMode = "development"
	// ModePullRequest builds the current label from the live workspace on CI.
	ModePullRequest RunMode = "pullRequest"
	// ModeProduction builds the current label from the default branch.
	ModeProduction RunMode = "production"
)

// ModeEnvVar overrides the configured mode but not the --mode flag.
const ModeEnvVar = "DOCVERSIONS_MODE"

var runModeNormalizer = normalization.NewNormalizer(map[string]RunMode{
	"auto":         ModeAuto,
	"development":  ModeDevelopment,
	"dev":          ModeDevelopment,
	"local":        ModeDevelopment,
	"pullrequest":  ModePullRequest,
	"pull_request": ModePullRequest,
	"pr":           ModePullRequest,
	"production":   ModeProduction,
	"prod":         ModeProduction,
}, ModeAuto)

// ParseRunMode parses a mode name or alias; empty input yields ModeAuto.
func ParseRunMode(raw string) (RunMode, error) {
	return runModeNormalizer.Parse(raw)
}

// UsesWorkspace reports whether the current label is built from the live workspace
// without consulting the default branch.
func (m RunMode) UsesWorkspace() bool {
	return m == ModeDevelopment || m == ModePullRequest
}

func (m RunMode) String() string { return string(m) }

// ResolveRunMode applies flag > DOCVERSIONS_MODE > config precedence and resolves ModeAuto.
func ResolveRunMode(flag string, env *Environment, cfg *Config) (RunMode, error) {
	candidates := []string{flag, env.Getenv(ModeEnvVar)}
	if cfg != nil {
		candidates = append(candidates, string(cfg.Mode))
	}

	mode := ModeAuto
	for _, raw := range candidates {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		parsed, err := ParseRunMode(raw)
		if err != nil {
			return "", err
		}
		mode = parsed
		break
	}

	if mode == ModeAuto {
		return DetectRunMode(env), nil
	}
	return mode, nil
}

// DetectRunMode derives the mode from CI environment variables.
func DetectRunMode(env *Environment) RunMode {
	if _, ok := env.LookupEnv("CI"); !ok {
		return ModeDevelopment
	}

	switch env.Getenv("GITHUB_EVENT_NAME") {
	case "pull_request", "pull_request_target":
		return ModePullRequest
	}
	if env.Getenv("CI_MERGE_REQUEST_IID") != "" {
		return ModePullRequest
	}
	if pr := env.Getenv("BUILDKITE_PULL_REQUEST"); pr != "" && pr != "false" {
		return ModePullRequest
	}
	return ModeProduction
}
