// Package notify turns build lifecycle events into collector requests.
//
// A Notifier is chosen once per job configuration: ActiveNotifier when any
// kind of data is configured for publishing, DisabledNotifier otherwise.
// Both are safe for concurrent use by builds of different jobs.
package notify

import (
	"context"
	"fmt"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/config"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/metrics"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/status"
	"hygieia-reporter/src/store"
)

// Lifecycle phases.
const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
)

// Payload kinds, one per collector endpoint.
const (
	KindBuild          = "build"
	KindArtifact       = "artifact"
	KindTest           = "test"
	KindStaticAnalysis = "static-analysis"
	KindDeploy         = "deploy"
)

// Notifier reacts to the start and completion of a build.
type Notifier interface {
	Started(ctx context.Context, job Job) *Report
	Completed(ctx context.Context, job Job) *Report
}

// Job is one lifecycle event handed over by the CI host.
type Job struct {
	Build *provider.Build
	// Workspace is the root that artifact, test, sonar and deploy paths are
	// relative to.
	Workspace string
	// Env holds the job's environment variables.
	Env map[string]string
}

// Deps are the collaborators of an ActiveNotifier. Collector and Source are
// required; the rest are optional.
type Deps struct {
	Collector collector.Service
	Source    provider.Source
	Mirror    broker.Broker
	Ledger    store.Ledger
	Metrics   metrics.Recorder
	Log       logger.Logger
}

// Attempt is the outcome of one collector request.
type Attempt struct {
	Kind string
	// Name identifies the payload within its kind, e.g. an artifact file name.
	Name     string
	Response collector.Response
}

// Report describes what a lifecycle call did.
type Report struct {
	Phase         string
	Event         *contracts.BuildEvent
	BuildID       string
	Status        status.Label
	StatusMessage string
	Attempts      []Attempt
}

// Failed returns the attempts the collector did not accept.
func (r *Report) Failed() []Attempt {
	var failed []Attempt
	for _, a := range r.Attempts {
		if !a.Response.Created() {
			failed = append(failed, a)
		}
	}
	return failed
}

// NewNotifier selects the notifier for cfg. cfg is copied; later changes to
// it are not observed.
func NewNotifier(cfg *config.Config, deps Deps) (Notifier, error) {
	if !cfg.Enabled() {
		return DisabledNotifier{}, nil
	}
	if deps.Collector == nil {
		return nil, fmt.Errorf("notifier needs a collector")
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("notifier needs a build source")
	}
	if deps.Log == nil {
		deps.Log = logger.NewSilentLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	return newActiveNotifier(*cfg, deps), nil
}

// DisabledNotifier publishes nothing.
type DisabledNotifier struct{}

func (DisabledNotifier) Started(ctx context.Context, job Job) *Report {
	return &Report{Phase: PhaseStarted}
}

func (DisabledNotifier) Completed(ctx context.Context, job Job) *Report {
	return &Report{Phase: PhaseCompleted}
}
