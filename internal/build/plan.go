package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/git"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/metrics"
	"git.home.luguber.info/inful/docversions/internal/versioning"
)

// Plan resolves the targets of a run. In production mode this may fetch the default branch.
func (s *DefaultBuildService) Plan(ctx context.Context, req BuildRequest) (*Plan, error) {
	return s.plan(ctx, req, s.logger.With(logfields.Mode(req.Mode.String())))
}

func (s *DefaultBuildService) plan(ctx context.Context, req BuildRequest, log *slog.Logger) (*Plan, error) {
	if req.Mode == config.ModeAuto || req.Mode == "" {
		return nil, ferrors.InternalError("run mode was not resolved").Build()
	}

	current, err := s.currentTarget(ctx, req, log)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Mode:         req.Mode,
		Targets:      []Target{current},
		ManifestPath: s.Env.Resolve(s.Config.Output.Manifest),
	}

	tags, err := s.matchTags(ctx, req.Versions)
	if err != nil {
		if !errors.Is(err, versioning.ErrNoTagsMatched) || s.Config.Versions.OnNoMatch != config.NoMatchFallback {
			return nil, err
		}
		log.Warn("No tags matched the version spec, building the current label only",
			logfields.Version(req.Versions))
		plan.Fallback = true
	}
	for _, tag := range tags {
		ref := "refs/tags/" + tag
		plan.Targets = append(plan.Targets, s.newTarget(versioning.LabelForRef(ref, s.Config.Versions.Remote), SourceTag, ref))
	}

	if err := checkLabels(plan.Targets); err != nil {
		return nil, err
	}
	return plan, nil
}

// currentTarget decides where the current label is built from.
func (s *DefaultBuildService) currentTarget(ctx context.Context, req BuildRequest, log *slog.Logger) (Target, error) {
	if req.Mode.UsesWorkspace() {
		return s.workspaceTarget(), nil
	}

	if req.Branch == "" {
		return Target{}, ferrors.ValidationError("--branch is required in production mode").
			WithCause(config.ErrMissingArgument).
			WithContext("flag", "branch").
			Build()
	}

	checkedOut, err := s.Repo.CurrentBranch()
	if err != nil {
		return Target{}, err
	}
	if checkedOut == req.Branch {
		log.Info("Workspace is on the default branch, building it in place", logfields.Ref(req.Branch))
		return s.workspaceTarget(), nil
	}

	remote := s.Config.Versions.Remote
	start := time.Now()
	err = s.Repo.Fetch(ctx, remote, req.Branch)
	s.recordStage(metrics.StageFetch, start, err)
	if err != nil {
		return Target{}, err
	}

	ref := git.RemoteBranchRef(remote, req.Branch)
	if !s.Repo.RefExists(ref) {
		return Target{}, ferrors.GitError("default branch was not found after fetching").
			WithContext("ref", ref).
			Build()
	}

	content := filepath.ToSlash(filepath.Join(s.Env.WorkspaceRel, s.Config.Build.ContentDir))
	found, err := s.Repo.PathExistsInRef(ref, content)
	if err != nil {
		return Target{}, err
	}
	if !found {
		return Target{}, ferrors.BuildError("default branch has no content directory").
			WithCause(docsbuild.ErrMissingContent).
			WithContext("ref", ref).
			WithContext("path", content).
			Build()
	}

	log.Info("Building current label from the default branch",
		logfields.Ref(ref), slog.String("checked_out", checkedOut))
	return s.newTarget(s.Config.Versions.CurrentLabel, SourceBranch, ref), nil
}

// matchTags returns the tags selected by raw, newest first. A blank spec selects none.
func (s *DefaultBuildService) matchTags(ctx context.Context, raw string) ([]string, error) {
	spec, err := versioning.ParseSpec(raw)
	if errors.Is(err, versioning.ErrEmptySpec) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.ValidationError("invalid version spec").WithCause(err).Build()
	}

	tags, err := s.Repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	matched := s.matcher.MatchSpec(spec, tags)
	if len(matched) == 0 {
		return nil, ferrors.ValidationError("cannot select versions").
			WithCause(versioning.ErrNoTagsMatched).
			WithContext("spec", spec.String()).
			WithContext("tags", len(tags)).
			Build()
	}
	return matched, nil
}

func (s *DefaultBuildService) workspaceTarget() Target {
	return s.newTarget(s.Config.Versions.CurrentLabel, SourceWorkspace, "")
}

func (s *DefaultBuildService) newTarget(label string, source SourceKind, ref string) Target {
	label = versioning.SanitizeLabel(label)
	return Target{
		Label:     label,
		Source:    source,
		Ref:       ref,
		OutputDir: filepath.Join(s.Env.Resolve(s.Config.Output.Directory), label),
	}
}

func checkLabels(targets []Target) error {
	seen := make(map[string]Target, len(targets))
	for _, t := range targets {
		if prev, ok := seen[t.Label]; ok {
			return ferrors.ValidationError("two versions share one output label").
				WithCause(ErrLabelCollision).
				WithContext("label", t.Label).
				WithContext("first", describe(prev)).
				WithContext("second", describe(t)).
				Build()
		}
		seen[t.Label] = t
	}
	return nil
}

func describe(t Target) string {
	if t.Ref == "" {
		return string(t.Source)
	}
	return t.Ref
}
