package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docversions/internal/config"
)

// LogLevelEnvVar overrides logging.level (but not --verbose).
const LogLevelEnvVar = "DOCVERSIONS_LOG_LEVEL"

// Global is shared by all subcommands.
type Global struct {
	// Out receives user-facing output. Logs go to stderr.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ${default_config})" type:"path" placeholder:"FILE"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Build the current label and matching tags, then write the version manifest"`
	Tags  TagsCmd  `cmd:"" help:"List the tags a version spec selects, newest first"`
	Plan  PlanCmd  `cmd:"" help:"Show which versions a build would produce without building"`
	Watch WatchCmd `cmd:"" help:"Rebuild the current label whenever content changes (development mode)"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// Vars returns the interpolation variables used in the CLI help.
func Vars() kong.Vars {
	return kong.Vars{"default_config": config.DefaultConfigFile}
}

// AfterApply installs a preliminary logger; it is replaced once the configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// newLogger applies --verbose > DOCVERSIONS_LOG_LEVEL > logging.level precedence.
func newLogger(w io.Writer, verbose bool, envLevel string, cfg config.LoggingConfig) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if envLevel != "" {
		level = config.NormalizeLogLevel(envLevel).SlogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
