package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// DefaultConfigFile is looked up in the working directory when no --config flag is given.
const DefaultConfigFile = "docversions.yaml"

// CurrentVersion is the only configuration schema version understood by this build.
const CurrentVersion = "1"

// Config represents the docversions configuration file.
type Config struct {
	Version  string         `yaml:"version"`
	Mode     RunMode        `yaml:"mode,omitempty"`
	Versions VersionsConfig `yaml:"versions"`
	Build    BuildConfig    `yaml:"build"`
	Packages PackagesConfig `yaml:"packages"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// VersionsConfig controls which refs are built and how they are labeled.
type VersionsConfig struct {
	Spec          string        `yaml:"spec,omitempty"`           // Default for --versions
	DefaultBranch string        `yaml:"default_branch,omitempty"` // Default for --branch
	Remote        string        `yaml:"remote,omitempty"`
	CurrentLabel  string        `yaml:"current_label,omitempty"`
	OnNoMatch     NoMatchPolicy `yaml:"on_no_match,omitempty"`
}

// BuildConfig describes the external content-build tool.
type BuildConfig struct {
	Command      []string `yaml:"command,omitempty"`
	ContentDir   string   `yaml:"content_dir,omitempty"`   // Must exist inside the source before building
	ArtifactDir  string   `yaml:"artifact_dir,omitempty"`  // Produced by Command, copied into <output>/<label>/
	ManifestFile string   `yaml:"manifest_file,omitempty"` // Package manifest required for ref builds
}

// PackagesConfig selects the package manager used to install dependencies in checkouts.
type PackagesConfig struct {
	Manager       PackageManager `yaml:"manager,omitempty"`
	InstallLocked []string       `yaml:"install_locked,omitempty"`
	Install       []string       `yaml:"install,omitempty"`
}

// OutputConfig describes where built versions and the version manifest go.
type OutputConfig struct {
	Directory  string `yaml:"directory,omitempty"`
	Manifest   string `yaml:"manifest,omitempty"`
	ExportName string `yaml:"export_name,omitempty"`
}

// MetricsConfig enables the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load reads, normalizes, defaults and validates the configuration.
//
// When configPath is empty the DefaultConfigFile is tried and a missing file yields the
// built-in defaults. An explicitly named file that does not exist is a config error.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", logfields.Error(err))
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Debug("No configuration file found, using defaults", logfields.Path(configPath))
		return Default()
	case errors.Is(err, fs.ErrNotExist):
		return nil, ferrors.ConfigError("configuration file not found").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	case err != nil:
		return nil, ferrors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.ConfigError("invalid configuration").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return cfg, nil
}

// Parse expands environment variables in data and runs the normalize/defaults/validate pipeline.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a fully defaulted configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finalize(cfg *Config) error {
	if err := normalizeConfig(cfg); err != nil {
		return err
	}
	applyDefaults(cfg)
	return ValidateConfig(cfg)
}
