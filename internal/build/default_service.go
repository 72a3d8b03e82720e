package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/metrics"
	"git.home.luguber.info/inful/docversions/internal/versioning"
	"git.home.luguber.info/inful/docversions/internal/workspace"
)

// Repository is the version-control view the planner needs. Implemented by *git.Client.
type Repository interface {
	ListTags(ctx context.Context) ([]string, error)
	CurrentBranch() (string, error)
	RefExists(ref string) bool
	PathExistsInRef(ref, p string) (bool, error)
	Fetch(ctx context.Context, remote, branch string) error
}

// Checkouts scopes a temporary checkout of a ref. Implemented by *workspace.Provisioner.
type Checkouts interface {
	WithCheckout(ctx context.Context, ref, label string, fn func(root string) error) error
}

// Installer installs dependencies inside a checkout. Implemented by *deps.Installer.
type Installer interface {
	Install(ctx context.Context, root, nested string) error
}

// DocsBuilder builds one source tree. Implemented by *docsbuild.Builder.
type DocsBuilder interface {
	Build(ctx context.Context, req docsbuild.Request) error
}

// ManifestWriter persists the label list. Implemented by *manifest.Writer.
type ManifestWriter interface {
	Write(path string, labels []string) error
}

// Dependencies are the collaborators of DefaultBuildService.
type Dependencies struct {
	Config    *config.Config
	Env       *config.Environment
	Repo      Repository
	Checkouts Checkouts
	Installer Installer
	Builder   DocsBuilder
	Manifest  ManifestWriter
}

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	Dependencies
	matcher  *versioning.Matcher
	recorder metrics.Recorder
	logger   *slog.Logger
	newRunID func() string
}

var _ BuildService = (*DefaultBuildService)(nil)

// NewBuildService creates a service. Metrics default to NoopRecorder.
func NewBuildService(d Dependencies) *DefaultBuildService {
	return &DefaultBuildService{
		Dependencies: d,
		matcher:      versioning.NewMatcher(slog.Default()),
		recorder:     metrics.NoopRecorder{},
		logger:       slog.Default(),
		newRunID:     uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithLogger sets the logger.
func (s *DefaultBuildService) WithLogger(logger *slog.Logger) *DefaultBuildService {
	if logger != nil {
		s.logger = logger
		s.matcher = versioning.NewMatcher(logger)
	}
	return s
}

// Run plans the run, builds every target strictly in order and writes the manifest.
// The first failing target aborts the run; nothing after it is built and no manifest is
// written.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{
		RunID:     s.newRunID(),
		Mode:      req.Mode,
		Status:    BuildStatusFailed,
		StartTime: start,
	}
	log := s.logger.With(logfields.RunID(result.RunID), logfields.Mode(req.Mode.String()))

	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		s.recorder.ObserveRunDuration(result.Duration)
		s.recorder.IncRunOutcome(outcomeLabel(result.Status))
	}()

	plan, err := s.plan(ctx, req, log)
	if err != nil {
		return result, err
	}
	result.Fallback = plan.Fallback
	log.Info("Starting versioned build", logfields.Count(len(plan.Targets)))

	for i, target := range plan.Targets {
		if err := ctx.Err(); err != nil {
			result.Status = BuildStatusCancelled
			s.recordSkipped(plan.Targets[i:])
			return result, err
		}

		vr := s.buildTarget(ctx, target, log)
		result.Versions = append(result.Versions, vr)
		if vr.Err != nil {
			if vr.Status == BuildStatusCancelled {
				result.Status = BuildStatusCancelled
			}
			log.Error("Version build failed, aborting run", logfields.Label(target.Label), logfields.Error(vr.Err))
			s.recordSkipped(plan.Targets[i+1:])
			return result, vr.Err
		}
	}

	labels := plan.Labels()
	stageStart := time.Now()
	if err := s.Manifest.Write(plan.ManifestPath, labels); err != nil {
		s.recordStage(metrics.StageManifest, stageStart, err)
		return result, err
	}
	s.recordStage(metrics.StageManifest, stageStart, nil)
	s.recorder.SetVersionsBuilt(len(labels))

	result.Labels = labels
	result.ManifestPath = plan.ManifestPath
	result.Status = BuildStatusSuccess
	log.Info("Versioned build complete",
		logfields.Count(len(labels)),
		logfields.Path(plan.ManifestPath),
		logfields.Duration(time.Since(start)))
	return result, nil
}

// BuildCurrent rebuilds only the current label from the live workspace. The manifest is
// left untouched.
func (s *DefaultBuildService) BuildCurrent(ctx context.Context, mode config.RunMode) error {
	if !mode.UsesWorkspace() {
		return ferrors.ValidationError("rebuilding the workspace requires development or pullRequest mode").
			WithCause(ErrModeRequiresWorkspace).
			WithContext("mode", mode.String()).
			Build()
	}
	vr := s.buildTarget(ctx, s.workspaceTarget(), s.logger.With(logfields.Mode(mode.String())))
	return vr.Err
}

func (s *DefaultBuildService) buildTarget(ctx context.Context, target Target, log *slog.Logger) VersionResult {
	start := time.Now()
	log = log.With(logfields.Label(target.Label))
	if target.Ref != "" {
		log = log.With(logfields.Ref(target.Ref))
	}
	log.Info("Building version", slog.String("source", string(target.Source)))

	var err error
	if target.Source.UsesCheckout() {
		err = s.buildFromCheckout(ctx, target)
	} else {
		err = s.runStage(metrics.StageBuild, func() error {
			return s.Builder.Build(ctx, docsbuild.Request{SourceDir: s.Env.WorkDir, OutputDir: target.OutputDir})
		})
	}

	vr := VersionResult{Target: target, Status: BuildStatusSuccess, Duration: time.Since(start), Err: err}
	result := metrics.ResultSuccess
	if err != nil {
		vr.Status = BuildStatusFailed
		result = metrics.ResultFailed
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			vr.Status = BuildStatusCancelled
			result = metrics.ResultCanceled
		}
	} else {
		log.Info("Version built", logfields.Path(target.OutputDir), logfields.Duration(vr.Duration))
	}
	s.recorder.ObserveVersionDuration(string(target.Source), vr.Duration)
	s.recorder.IncVersionResult(string(target.Source), result)
	return vr
}

func (s *DefaultBuildService) buildFromCheckout(ctx context.Context, target Target) error {
	checkoutStart := time.Now()
	checkedOut := false
	err := s.Checkouts.WithCheckout(ctx, target.Ref, target.Label, func(root string) error {
		checkedOut = true
		s.recordStage(metrics.StageCheckout, checkoutStart, nil)

		source := workspace.NestedPath(root, s.Env.WorkspaceRel)
		if err := s.runStage(metrics.StageInstall, func() error {
			return s.Installer.Install(ctx, root, source)
		}); err != nil {
			return err
		}
		return s.runStage(metrics.StageBuild, func() error {
			return s.Builder.Build(ctx, docsbuild.Request{
				SourceDir:       source,
				OutputDir:       target.OutputDir,
				RequireManifest: true,
			})
		})
	})
	if err != nil && !checkedOut {
		s.recordStage(metrics.StageCheckout, checkoutStart, err)
	}
	return err
}

// recordSkipped counts targets that were never attempted because the run stopped early.
func (s *DefaultBuildService) recordSkipped(targets []Target) {
	for _, t := range targets {
		s.recorder.IncVersionResult(string(t.Source), metrics.ResultSkipped)
	}
}

func (s *DefaultBuildService) runStage(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.recordStage(stage, start, err)
	return err
}

func (s *DefaultBuildService) recordStage(stage string, start time.Time, err error) {
	s.recorder.ObserveStageDuration(stage, time.Since(start))
	if err != nil {
		s.logger.Warn("Stage failed", logfields.Stage(stage), logfields.Error(err))
		s.recorder.IncStageResult(stage, metrics.ResultFailed)
		return
	}
	s.recorder.IncStageResult(stage, metrics.ResultSuccess)
}

func outcomeLabel(status BuildStatus) metrics.ResultLabel {
	switch status {
	case BuildStatusSuccess:
		return metrics.ResultSuccess
	case BuildStatusCancelled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}
