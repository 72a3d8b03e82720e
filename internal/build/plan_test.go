package build

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

func TestPlan_ProductionRequiresBranch(t *testing.T) {
	h := newHarness(t, ".")

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction})

	require.ErrorIs(t, err, config.ErrMissingArgument)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestPlan_ProductionOnDefaultBranchUsesWorkspace(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.branch = "main"

	plan, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction, Branch: "main"})
	require.NoError(t, err)

	require.Len(t, plan.Targets, 1)
	assert.Equal(t, SourceWorkspace, plan.Targets[0].Source)
	assert.Empty(t, h.repo.fetched, "no fetch when already on the default branch")
}

func TestPlan_ProductionOnOtherBranchFetchesDefault(t *testing.T) {
	h := newHarness(t, filepath.Join("docs", "site"))
	h.repo.branch = "feature/x"
	h.repo.refs["refs/remotes/origin/main"] = true
	h.repo.paths["docs/site/content"] = true
	h.repo.tags = []string{"v1.0.0"}

	plan, err := h.service().Plan(context.Background(), BuildRequest{
		Mode:     config.ModeProduction,
		Branch:   "main",
		Versions: "1.x",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"origin/main"}, h.repo.fetched)
	assert.Equal(t, []string{"refs/remotes/origin/main:docs/site/content"}, h.repo.pathCalls)
	assert.Equal(t, []Target{
		{Label: "current", Source: SourceBranch, Ref: "refs/remotes/origin/main", OutputDir: filepath.Join(h.env.WorkDir, "versions", "current")},
		{Label: "v1.0.0", Source: SourceTag, Ref: "refs/tags/v1.0.0", OutputDir: filepath.Join(h.env.WorkDir, "versions", "v1.0.0")},
	}, plan.Targets)
}

func TestPlan_ProductionDetachedHeadFetchesDefault(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.refs["refs/remotes/origin/main"] = true
	h.repo.paths["content"] = true

	plan, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction, Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, SourceBranch, plan.Targets[0].Source)
}

func TestPlan_ProductionFetchFailure(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.fetchErr = ferrors.GitError("fetch failed").Build()

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction, Branch: "main"})

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
}

func TestPlan_ProductionMissingRemoteRef(t *testing.T) {
	h := newHarness(t, ".")

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction, Branch: "main"})

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
}

func TestPlan_ProductionBranchWithoutContent(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.refs["refs/remotes/origin/main"] = true

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeProduction, Branch: "main"})

	require.ErrorIs(t, err, docsbuild.ErrMissingContent)
}

func TestPlan_LabelCollision(t *testing.T) {
	h := newHarness(t, ".")
	h.cfg.Versions.CurrentLabel = "v1.0.0"
	h.repo.tags = []string{"v1.0.0"}

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "v1.0.0"})

	require.ErrorIs(t, err, ErrLabelCollision)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestPlan_SanitizesLabels(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0+build.7"}

	plan, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: ">=1.0.0"})
	require.NoError(t, err)

	assert.Equal(t, []string{"current", "v1.0.0_build.7"}, plan.Labels())
	assert.Equal(t, "refs/tags/v1.0.0+build.7", plan.Targets[1].Ref)
}

func TestPlan_UnresolvedModeIsInternalError(t *testing.T) {
	h := newHarness(t, ".")

	_, err := h.service().Plan(context.Background(), BuildRequest{Mode: config.ModeAuto})

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
	assert.False(t, errors.Is(err, config.ErrMissingArgument))
}
