package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docversions/internal/config"
)

// BuildService is the canonical interface for executing versioned documentation runs.
type BuildService interface {
	// Plan resolves the targets of a run without building anything.
	Plan(ctx context.Context, req BuildRequest) (*Plan, error)
	// Run builds every planned target in order and writes the version manifest.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains the per-invocation inputs of a run. Everything else comes from
// the service's configuration.
type BuildRequest struct {
	// Mode is the resolved run mode (never ModeAuto).
	Mode config.RunMode

	// Versions is the raw version spec; blank requests no tags.
	Versions string

	// Branch names the default branch. Required in production mode.
	Branch string
}

// SourceKind tells where a target's sources come from.
type SourceKind string

const (
	// SourceWorkspace builds the live working directory.
	SourceWorkspace SourceKind = "workspace"
	// SourceBranch builds a fetched remote-tracking branch in a worktree.
	SourceBranch SourceKind = "branch"
	// SourceTag builds a tag in a worktree.
	SourceTag SourceKind = "tag"
)

// UsesCheckout reports whether the source is materialized in a temporary worktree.
func (k SourceKind) UsesCheckout() bool {
	return k == SourceBranch || k == SourceTag
}

// Target is one version to build.
type Target struct {
	Label     string
	Source    SourceKind
	Ref       string // empty for SourceWorkspace
	OutputDir string
}

// Plan is the ordered list of targets for a run. The order is the manifest order.
type Plan struct {
	Mode         config.RunMode
	Targets      []Target
	ManifestPath string
	// Fallback is set when the version spec matched nothing and the run continues
	// with the current label only.
	Fallback bool
}

// Labels returns the target labels in plan order.
func (p *Plan) Labels() []string {
	labels := make([]string, len(p.Targets))
	for i, t := range p.Targets {
		labels[i] = t.Label
	}
	return labels
}

// VersionResult is the outcome of one target.
type VersionResult struct {
	Target   Target
	Status   BuildStatus
	Duration time.Duration
	Err      error
}

// BuildResult contains the outcome of a run.
type BuildResult struct {
	// RunID identifies the run in logs.
	RunID string

	// Status indicates the overall outcome.
	Status BuildStatus

	Mode config.RunMode

	// Labels is what the manifest lists. Empty unless the run succeeded.
	Labels []string

	// Versions holds one entry per attempted target, in build order.
	Versions []VersionResult

	// ManifestPath is the written manifest, empty when none was written.
	ManifestPath string

	Fallback bool

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a run or of one target.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
