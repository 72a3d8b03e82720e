package config

import (
	"log/slog"

	"git.home.luguber.info/inful/docversions/internal/foundation/normalization"
)

// NoMatchPolicy decides what happens when a version spec matches no tags.
type NoMatchPolicy string

const (
	NoMatchFail     NoMatchPolicy = "fail"
	NoMatchFallback NoMatchPolicy = "fallback" // Build the current label only and warn
)

var noMatchNormalizer = normalization.NewNormalizer(map[string]NoMatchPolicy{
	"fail":     NoMatchFail,
	"error":    NoMatchFail,
	"fallback": NoMatchFallback,
	"current":  NoMatchFallback,
}, NoMatchFail)

// ParseNoMatchPolicy parses a policy name; empty input yields NoMatchFail.
func ParseNoMatchPolicy(raw string) (NoMatchPolicy, error) {
	return noMatchNormalizer.Parse(raw)
}

// PackageManager names a supported JavaScript package manager.
type PackageManager string

const (
	PackageManagerNPM  PackageManager = "npm"
	PackageManagerPNPM PackageManager = "pnpm"
	PackageManagerYarn PackageManager = "yarn"
	PackageManagerBun  PackageManager = "bun"
)

var packageManagerNormalizer = normalization.NewNormalizer(map[string]PackageManager{
	"npm":  PackageManagerNPM,
	"pnpm": PackageManagerPNPM,
	"yarn": PackageManagerYarn,
	"bun":  PackageManagerBun,
}, PackageManagerNPM)

// ParsePackageManager parses a package manager name; empty input yields npm.
func ParsePackageManager(raw string) (PackageManager, error) {
	return packageManagerNormalizer.Parse(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the level onto log/slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}
