package notify

import (
	"context"
	"time"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/config"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/deploy"
	"hygieia-reporter/src/junit"
	"hygieia-reporter/src/metrics"
	"hygieia-reporter/src/scm"
	"hygieia-reporter/src/sonar"
	"hygieia-reporter/src/status"
)

// ActiveNotifier publishes to the collector. Every request is made once;
// a failed request is logged and never stops the requests after it.
type ActiveNotifier struct {
	cfg  config.Config
	deps Deps
	now  func() time.Time
}

func newActiveNotifier(cfg config.Config, deps Deps) *ActiveNotifier {
	return &ActiveNotifier{cfg: cfg, deps: deps, now: time.Now}
}

// Started publishes an in-progress build record when any configured kind
// asks for it.
func (n *ActiveNotifier) Started(ctx context.Context, job Job) *Report {
	b := job.Build
	report := &Report{
		Phase:         PhaseStarted,
		Status:        status.Starting,
		StatusMessage: status.Message(status.Starting, b, nil),
	}
	n.deps.Metrics.IncNotification(PhaseStarted, contracts.BuildStatusInProgress)

	if !n.cfg.PublishOnStart() {
		return report
	}

	report.Event = n.buildEvent(ctx, job, false)
	resp := n.publishBuild(ctx, job, report)
	report.BuildID = resp.Value
	return report
}

// Completed publishes the finished build record and, for a successful or
// unstable build, the secondary payloads that reference it.
func (n *ActiveNotifier) Completed(ctx context.Context, job Job) *Report {
	b := job.Build
	log := n.deps.Log

	previous, err := n.deps.Source.PreviousBuilds(ctx, b.Project, b.Number)
	if err != nil {
		log.Warn("Could not load build history of %s: %v", b.Project, err)
	}
	label := status.Classify(b, previous)
	report := &Report{
		Phase:         PhaseCompleted,
		Status:        label,
		StatusMessage: status.Message(label, b, status.LastSuccessful(previous)),
	}
	log.Info("%s", report.StatusMessage)
	n.deps.Metrics.IncNotification(PhaseCompleted, b.Result.String())

	report.Event = n.buildEvent(ctx, job, true)
	resp := n.publishBuild(ctx, job, report)
	report.BuildID = resp.Value

	if !b.Result.Publishable() {
		return report
	}
	if !resp.Created() {
		log.Warn("No build id returned by the collector, skipping artifact, test and deploy data")
		return report
	}

	root := job.Workspace
	if root == "" {
		root = "."
	}
	if n.cfg.Artifact != nil {
		n.publishArtifacts(ctx, job, root, report)
	}
	if n.cfg.Test != nil {
		n.publishTests(ctx, job, root, report)
	}
	if n.cfg.Sonar != nil {
		n.publishSonar(ctx, job, root, report)
	}
	if n.cfg.Deploy != nil {
		n.publishDeploys(ctx, job, root, report)
	}
	return report
}

func (n *ActiveNotifier) buildEvent(ctx context.Context, job Job, complete bool) *contracts.BuildEvent {
	commits := scm.CommitsFor(ctx, n.deps.Source, job.Build, n.deps.Log)
	return NewBuildEvent(job.Build, commits, n.cfg.NiceName, InstanceURL(job.Build, job.Env), complete)
}

func (n *ActiveNotifier) publishBuild(ctx context.Context, job Job, report *Report) collector.Response {
	resp := n.attempt(ctx, job, report, KindBuild, collector.PathBuild, job.Build.Key().String(), func() collector.Response {
		return n.deps.Collector.PublishBuild(ctx, report.Event)
	})
	if resp.Created() {
		n.deps.Log.Info("Published Build Complete Data. %s", resp)
	} else {
		n.deps.Log.Error("Failed Publishing Build Complete Data. %s", resp)
	}

	if n.deps.Mirror != nil {
		topic := n.cfg.Mirror.Topic
		if topic == "" {
			topic = contracts.TopicBuilds
		}
		if err := broker.PublishJSON(ctx, n.deps.Mirror, topic, report.Event.JobName, report.Event); err != nil {
			n.deps.Log.Warn("Could not mirror build event: %v", err)
		}
	}
	return resp
}

func (n *ActiveNotifier) publishArtifacts(ctx context.Context, job Job, root string, report *Report) {
	descriptors := artifact.Resolve(*n.cfg.Artifact, root, report.BuildID, n.deps.Log)
	n.deps.Metrics.ObserveArtifactsResolved(len(descriptors))
	if len(descriptors) == 0 {
		n.deps.Log.Info("Published Build Artifact Data. Nothing to publish")
		return
	}

	for _, d := range descriptors {
		resp := n.attempt(ctx, job, report, KindArtifact, collector.PathArtifact, d.CanonicalName, func() collector.Response {
			return n.deps.Collector.PublishArtifact(ctx, d)
		})
		if resp.Created() {
			n.deps.Log.Info("Published Build Artifact Data. Filename=%s, Name=%s, Version=%s, Group=%s. %s",
				d.CanonicalName, d.ArtifactName, d.Version, d.Group, resp)
		} else {
			n.deps.Log.Error("Failed Publishing Build Artifact Data. Filename=%s, Name=%s, Version=%s, Group=%s. %s",
				d.CanonicalName, d.ArtifactName, d.Version, d.Group, resp)
		}
	}
}

func (n *ActiveNotifier) publishTests(ctx context.Context, job Job, root string, report *Report) {
	req := junit.Collect(*n.cfg.Test, root, junit.Job{
		Build:       job.Build,
		BuildID:     report.BuildID,
		NiceName:    n.cfg.NiceName,
		InstanceURL: InstanceURL(job.Build, job.Env),
	}, n.deps.Log)
	if req == nil {
		n.deps.Log.Info("Published Test Data. Nothing to publish")
		return
	}

	resp := n.attempt(ctx, job, report, KindTest, collector.PathTest, req.Type, func() collector.Response {
		return n.deps.Collector.PublishTestResults(ctx, req)
	})
	if resp.Created() {
		n.deps.Log.Info("Published Test Data. %s", resp)
	} else {
		n.deps.Log.Error("Failed Publishing Test Data. %s", resp)
	}
}

func (n *ActiveNotifier) publishSonar(ctx context.Context, job Job, root string, report *Report) {
	if n.cfg.Sonar.ReportFile == "" {
		n.deps.Log.Info("Published Sonar Result. Nothing to publish")
		return
	}
	r, err := sonar.ReadReport(root, n.cfg.Sonar.ReportFile)
	if err != nil {
		n.deps.Log.Error("Publishing error: %v", err)
		return
	}
	req := r.Request(report.BuildID, n.cfg.NiceName, job.Build.EndTime())

	resp := n.attempt(ctx, job, report, KindStaticAnalysis, collector.PathStaticAnalysis, req.ProjectName, func() collector.Response {
		return n.deps.Collector.PublishCodeQuality(ctx, req)
	})
	if resp.Created() {
		n.deps.Log.Info("Published Sonar Data. %s", resp)
	} else {
		n.deps.Log.Error("Failed Publishing Sonar Data. %s", resp)
	}
}

func (n *ActiveNotifier) publishDeploys(ctx context.Context, job Job, root string, report *Report) {
	reqs := deploy.Requests(*n.cfg.Deploy, root, deploy.Job{
		Build:       job.Build,
		BuildID:     report.BuildID,
		NiceName:    n.cfg.NiceName,
		InstanceURL: InstanceURL(job.Build, job.Env),
	}, n.deps.Log)
	if len(reqs) == 0 {
		n.deps.Log.Info("Published Deploy Data. Nothing to publish")
		return
	}

	for _, req := range reqs {
		resp := n.attempt(ctx, job, report, KindDeploy, collector.PathDeploy, req.ArtifactName, func() collector.Response {
			return n.deps.Collector.PublishDeploy(ctx, req)
		})
		if resp.Created() {
			n.deps.Log.Info("Published Deploy Data: %s", resp)
		} else {
			n.deps.Log.Error("Failed Publishing Deploy Data: %s", resp)
		}
	}
}

// attempt runs one collector request and records its outcome in the report,
// metrics, ledger and the publish-results mirror topic.
func (n *ActiveNotifier) attempt(ctx context.Context, job Job, report *Report, kind, endpoint, name string, do func() collector.Response) collector.Response {
	start := n.now()
	resp := do()
	n.deps.Metrics.ObservePublishDuration(kind, n.now().Sub(start))
	n.deps.Metrics.IncPublishResult(kind, resultLabel(resp))

	report.Attempts = append(report.Attempts, Attempt{Kind: kind, Name: name, Response: resp})

	if n.deps.Ledger == nil && n.deps.Mirror == nil {
		return resp
	}

	body := resp.Value
	if resp.Err != nil {
		body = resp.Err.Error()
	}
	rec := &contracts.PublishRecord{
		JobName:      job.Build.Project,
		BuildNumber:  job.Build.Number,
		Phase:        report.Phase,
		Kind:         kind,
		Endpoint:     endpoint,
		ResponseCode: resp.Code,
		ResponseBody: body,
		Succeeded:    resp.Created(),
		Timestamp:    start.UnixMilli(),
	}
	if n.deps.Ledger != nil {
		if err := n.deps.Ledger.Record(ctx, rec); err != nil {
			n.deps.Log.Warn("Could not record %s publish: %v", kind, err)
		}
	}
	if n.deps.Mirror != nil {
		if err := broker.PublishJSON(ctx, n.deps.Mirror, contracts.TopicPublishResults, rec.JobName, rec); err != nil {
			n.deps.Log.Warn("Could not mirror %s publish result: %v", kind, err)
		}
	}
	return resp
}

func resultLabel(resp collector.Response) metrics.ResultLabel {
	switch {
	case resp.Created():
		return metrics.ResultCreated
	case collector.IsTransportError(resp):
		return metrics.ResultError
	default:
		return metrics.ResultFailed
	}
}

var _ Notifier = (*ActiveNotifier)(nil)
