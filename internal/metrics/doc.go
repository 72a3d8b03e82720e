// Package metrics records build observations.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	svc := build.NewService(deps).WithRecorder(metrics.NewPrometheusRecorder(nil))
//
// PrometheusRecorder keeps its own registry. A one-shot CLI run persists it with
// WriteTextfile for the node_exporter textfile collector; the long-running watch loop can
// serve it over HTTP with Handler.
package metrics
