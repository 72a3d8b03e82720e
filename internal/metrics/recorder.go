package metrics

import "time"

// ResultLabel enumerates stage and version result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// Stage names used as metric labels.
const (
	StageFetch    = "fetch"
	StageCheckout = "checkout"
	StageInstall  = "install"
	StageBuild    = "build"
	StageManifest = "manifest"
)

// Recorder defines observability hooks for a docs run. All methods must be safe to call
// on NoopRecorder.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveVersionDuration(source string, d time.Duration)
	IncVersionResult(source string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome ResultLabel)
	SetVersionsBuilt(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)   {}
func (NoopRecorder) IncStageResult(string, ResultLabel)           {}
func (NoopRecorder) ObserveVersionDuration(string, time.Duration) {}
func (NoopRecorder) IncVersionResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)             {}
func (NoopRecorder) IncRunOutcome(ResultLabel)                    {}
func (NoopRecorder) SetVersionsBuilt(int)                         {}
