// Package metrics counts collector requests and lifecycle notifications.
package metrics

import "time"

// ResultLabel enumerates publish outcomes for counters.
type ResultLabel string

const (
	ResultCreated ResultLabel = "created"
	ResultFailed  ResultLabel = "failed"
	ResultError   ResultLabel = "transport_error"
)

// Recorder defines observability hooks for the notifier. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObservePublishDuration(kind string, d time.Duration)
	IncPublishResult(kind string, result ResultLabel)
	IncNotification(phase, status string)
	ObserveArtifactsResolved(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePublishDuration(string, time.Duration) {}
func (NoopRecorder) IncPublishResult(string, ResultLabel)         {}
func (NoopRecorder) IncNotification(string, string)               {}
func (NoopRecorder) ObserveArtifactsResolved(int)                 {}
