package build

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/metrics"
	"git.home.luguber.info/inful/docversions/internal/versioning"
)

func TestBuildStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   BuildStatus
		expected bool
	}{
		{BuildStatusSuccess, true},
		{BuildStatusFailed, false},
		{BuildStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsSuccess(); got != tt.expected {
				t.Errorf("IsSuccess() = %v, want %v", got, tt.expected)
			}
			if !tt.status.IsTerminal() {
				t.Errorf("%s should be terminal", tt.status)
			}
		})
	}
}

func TestRun_DevelopmentWorkspaceOnly(t *testing.T) {
	h := newHarness(t, ".")

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment})
	require.NoError(t, err)

	assert.Equal(t, BuildStatusSuccess, result.Status)
	assert.Equal(t, []string{"current"}, result.Labels)
	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err, "run id is a uuid")

	require.Len(t, h.builder.requests, 1)
	req := h.builder.requests[0]
	assert.Equal(t, h.env.WorkDir, req.SourceDir)
	assert.Equal(t, filepath.Join(h.env.WorkDir, "versions", "current"), req.OutputDir)
	assert.False(t, req.RequireManifest)
	assert.Empty(t, h.installer.calls, "workspace builds do not install dependencies")

	assert.Equal(t, 1, h.manifest.writes)
	assert.Equal(t, filepath.Join(h.env.WorkDir, "src", "generated", "versions.ts"), h.manifest.path)
	assert.Equal(t, []string{"current"}, h.manifest.labels)
	assert.Equal(t, 1, h.recorder.outcomes[metrics.ResultSuccess])
	assert.Equal(t, 1, h.recorder.built)
}

func TestRun_TagsBuiltInDescendingOrderAfterCurrent(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0", "v1.2.0", "v2.0.0-rc.1", "nightly", "v0.9.0"}

	result, err := h.service().Run(context.Background(), BuildRequest{
		Mode:     config.ModePullRequest,
		Versions: "^1.0.0, v2.0.0-rc.1",
	})
	require.NoError(t, err)

	want := []string{"current", "v2.0.0-rc.1", "v1.2.0", "v1.0.0"}
	assert.Equal(t, want, result.Labels)
	assert.Equal(t, want, h.manifest.labels)

	assert.Equal(t, []string{
		"build current",
		"checkout refs/tags/v2.0.0-rc.1", "install", "build v2.0.0-rc.1", "release refs/tags/v2.0.0-rc.1",
		"checkout refs/tags/v1.2.0", "install", "build v1.2.0", "release refs/tags/v1.2.0",
		"checkout refs/tags/v1.0.0", "install", "build v1.0.0", "release refs/tags/v1.0.0",
	}, h.events, "targets are built strictly one after another")

	for _, req := range h.builder.requests[1:] {
		assert.True(t, req.RequireManifest, "ref builds require a package manifest")
	}
	assert.Equal(t, 3, h.recorder.versions["tag/success"])
	assert.Equal(t, 3, h.recorder.stages["checkout/success"])
	assert.Equal(t, 3, h.recorder.stages["install/success"])
	assert.Equal(t, 4, h.recorder.stages["build/success"])
	assert.Equal(t, 1, h.recorder.stages["manifest/success"])
}

func TestRun_CheckoutFailure(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0"}
	addErr := errors.New("invalid reference: v1.0.0")
	h.checkouts.err = addErr
	var logs bytes.Buffer
	svc := h.service().WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	result, err := svc.Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "v1.0.0"})

	require.ErrorIs(t, err, addErr)
	assert.Contains(t, logs.String(), `msg="Stage failed" stage=checkout`)
	assert.Equal(t, BuildStatusFailed, result.Status)
	assert.Zero(t, h.manifest.writes)
	assert.Equal(t, 1, h.recorder.stages["checkout/failed"])
	assert.NotContains(t, h.events, "install")
}

func TestRun_NestedWorkspaceInsideCheckout(t *testing.T) {
	h := newHarness(t, filepath.Join("packages", "site"))
	h.repo.tags = []string{"v1.0.0"}

	_, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "v1.0.0"})
	require.NoError(t, err)

	root := h.checkouts.roots["v1.0.0"]
	nested := filepath.Join(root, "packages", "site")
	require.Len(t, h.installer.calls, 1)
	assert.Equal(t, [2]string{root, nested}, h.installer.calls[0])
	assert.Equal(t, nested, h.builder.requests[1].SourceDir)
}

func TestRun_NoTagsMatched(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0"}

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "^3.0.0"})

	require.ErrorIs(t, err, versioning.ErrNoTagsMatched)
	assert.Equal(t, 1, strings.Count(err.Error(), versioning.ErrNoTagsMatched.Error()), "cause is not repeated: %v", err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	assert.Equal(t, BuildStatusFailed, result.Status)
	assert.Empty(t, h.events, "nothing is built")
	assert.Zero(t, h.manifest.writes)
	assert.Equal(t, 1, h.recorder.outcomes[metrics.ResultFailed])
}

func TestRun_NoTagsMatchedFallback(t *testing.T) {
	h := newHarness(t, ".")
	h.cfg.Versions.OnNoMatch = config.NoMatchFallback
	h.repo.tags = []string{"v1.0.0"}

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "^3.0.0"})
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, []string{"current"}, h.manifest.labels)
}

func TestRun_BlankSpecBuildsCurrentOnly(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0"}

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: " , "})
	require.NoError(t, err)
	assert.Equal(t, []string{"current"}, result.Labels)
	assert.False(t, result.Fallback)
}

func TestRun_FailureAbortsWithoutManifest(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0", "v1.1.0", "v1.2.0"}
	buildErr := ferrors.BuildError("cannot build documentation").WithCause(docsbuild.ErrBuildOutputMissing).Build()
	h.builder.failOn["v1.1.0"] = buildErr

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: ">=1.0.0"})

	require.ErrorIs(t, err, docsbuild.ErrBuildOutputMissing)
	assert.Equal(t, BuildStatusFailed, result.Status)
	assert.Empty(t, result.Labels)
	assert.Zero(t, h.manifest.writes, "no partial manifest")
	assert.NotContains(t, h.events, "build v1.0.0", "later versions are not attempted")
	assert.Equal(t, 1, h.recorder.versions["tag/skipped"])
	assert.Contains(t, h.events, "release refs/tags/v1.1.0", "failed checkout is released")

	require.Len(t, result.Versions, 3)
	assert.Equal(t, BuildStatusFailed, result.Versions[2].Status)
}

func TestRun_InstallFailureSkipsBuild(t *testing.T) {
	h := newHarness(t, ".")
	h.repo.tags = []string{"v1.0.0"}
	h.installer.err = errors.New("npm ci failed")

	_, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment, Versions: "v1.0.0"})

	require.ErrorIs(t, err, h.installer.err)
	assert.NotContains(t, h.events, "build v1.0.0")
}

func TestRun_ManifestFailure(t *testing.T) {
	h := newHarness(t, ".")
	h.manifest.err = ferrors.ManifestError("failed to write version manifest").Build()

	result, err := h.service().Run(context.Background(), BuildRequest{Mode: config.ModeDevelopment})

	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryManifest))
	assert.Equal(t, BuildStatusFailed, result.Status)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	h := newHarness(t, ".")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := h.service().Run(ctx, BuildRequest{Mode: config.ModeDevelopment})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BuildStatusCancelled, result.Status)
	assert.Empty(t, h.events)
	assert.Equal(t, 1, h.recorder.outcomes[metrics.ResultCanceled])
}

func TestBuildCurrent(t *testing.T) {
	h := newHarness(t, ".")
	svc := h.service()

	require.NoError(t, svc.BuildCurrent(context.Background(), config.ModeDevelopment))
	assert.Equal(t, []string{"build current"}, h.events)
	assert.Zero(t, h.manifest.writes, "rebuilding current leaves the manifest alone")

	err := svc.BuildCurrent(context.Background(), config.ModeProduction)
	require.ErrorIs(t, err, ErrModeRequiresWorkspace)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}
