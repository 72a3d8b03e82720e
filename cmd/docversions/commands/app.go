package commands

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docversions/internal/build"
	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/deps"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/git"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/manifest"
	"git.home.luguber.info/inful/docversions/internal/metrics"
	"git.home.luguber.info/inful/docversions/internal/runner"
	"git.home.luguber.info/inful/docversions/internal/workspace"
)

// App holds everything a command needs after startup: the effective configuration,
// the environment captured once for the whole run and the repository client.
type App struct {
	Config *config.Config
	Env    *config.Environment
	Git    *git.Client
	Runner runner.Runner
	Logger *slog.Logger
}

// load reads the configuration, applies flag overrides, captures the environment and
// opens the repository containing the working directory.
func (c *CLI) load(overrides config.Overrides) (*App, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if err := overrides.Apply(cfg); err != nil {
		return nil, err
	}

	env, err := config.CaptureEnvironment(git.FindRoot)
	if err != nil {
		return nil, err
	}

	logger := newLogger(os.Stderr, c.Verbose, env.Getenv(LogLevelEnvVar), cfg.Logging)
	slog.SetDefault(logger)
	logger.Debug("Captured environment",
		logfields.Path(env.WorkDir),
		slog.String("repo_root", env.RepoRoot),
		slog.String("workspace", env.WorkspaceRel))

	cmdRunner := runner.NewExecRunner(logger)
	client, err := git.Open(env.RepoRoot, cmdRunner, logger)
	if err != nil {
		return nil, err
	}

	return &App{Config: cfg, Env: env, Git: client, Runner: cmdRunner, Logger: logger}, nil
}

// ResolveMode applies --mode > DOCVERSIONS_MODE > config precedence and resolves auto.
func (a *App) ResolveMode(flag string) (config.RunMode, error) {
	mode, err := config.ResolveRunMode(flag, a.Env, a.Config)
	if err != nil {
		return "", ferrors.ValidationError("invalid run mode").WithCause(err).WithContext("value", flag).Build()
	}
	a.Logger.Debug("Resolved run mode", logfields.Mode(mode.String()))
	return mode, nil
}

// Request builds the orchestrator request from the effective configuration.
func (a *App) Request(mode config.RunMode) build.BuildRequest {
	return build.BuildRequest{
		Mode:     mode,
		Versions: a.Config.Versions.Spec,
		Branch:   a.Config.Versions.DefaultBranch,
	}
}

// BuildService wires the orchestrator with its real collaborators.
func (a *App) BuildService(recorder metrics.Recorder) *build.DefaultBuildService {
	cfg := a.Config
	profile := deps.ProfileFor(cfg.Packages, cfg.Build.ManifestFile)

	return build.NewBuildService(build.Dependencies{
		Config:    cfg,
		Env:       a.Env,
		Repo:      a.Git,
		Checkouts: workspace.NewProvisioner(a.Git, "", a.Logger),
		Installer: deps.NewInstaller(a.Runner, profile, a.Logger),
		Builder:   docsbuild.NewBuilder(a.Runner, cfg.Build, a.Logger),
		Manifest:  manifest.NewWriter(cfg.Output.ExportName),
	}).WithRecorder(recorder).WithLogger(a.Logger)
}
