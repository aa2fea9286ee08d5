package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/collector"
	"hygieia-reporter/src/collectorstub"
	"hygieia-reporter/src/config"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/junit"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/metrics"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/status"
	"hygieia-reporter/src/store"
)

const surefireXML = `<testsuite name="AppTest" tests="1" time="0.2">
  <testcase name="works" classname="com.example.AppTest" time="0.2"/>
</testsuite>`

func intPtr(n int) *int { return &n }

// workspace creates a build workspace with one jar and one JUnit report.
func workspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"target/app-1.2.3.jar":                     "jar",
		"target/surefire-reports/TEST-AppTest.xml": surefireXML,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func successfulBuild() *provider.Build {
	return &provider.Build{
		Project: "app", Number: 7, URL: "http://ci/job/app/",
		StartTime: 1000, Duration: 500, Result: provider.ResultSuccess,
		ChangeSet: &provider.ChangeSet{Entries: []provider.Entry{
			{CommitID: "c1", AuthorName: "Ada", Message: "fix \x1b[31mbuild\x1b[0m\n", AffectedFiles: intPtr(2), Timestamp: 900},
		}},
	}
}

type harness struct {
	stub   *collectorstub.Server
	client *collector.Client
	logs   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stub := collectorstub.New("")
	ts := httptest.NewServer(stub.Handler())
	t.Cleanup(ts.Close)
	return &harness{
		stub:   stub,
		client: collector.NewClient(ts.URL+"/api", ""),
		logs:   &bytes.Buffer{},
	}
}

func (h *harness) notifier(t *testing.T, cfg *config.Config, src provider.Source, extra ...func(*Deps)) Notifier {
	t.Helper()
	deps := Deps{Collector: h.client, Source: src, Log: logger.NewWriterLogger(h.logs)}
	for _, f := range extra {
		f(&deps)
	}
	n, err := NewNotifier(cfg, deps)
	require.NoError(t, err)
	return n
}

func fullConfig() *config.Config {
	return &config.Config{
		APIURL:   "http://unused",
		NiceName: "ci",
		Build:    &config.BuildSpec{},
		Artifact: &artifact.Spec{Directory: "target", NamePattern: "*.jar", Group: "com.example"},
		Test:     &junit.Spec{ResultsDirectory: "target/surefire-reports", FileNamePattern: "TEST-*.xml"},
	}
}

func TestNewNotifier_Disabled(t *testing.T) {
	n, err := NewNotifier(&config.Config{APIURL: "http://x"}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, DisabledNotifier{}, n)

	report := n.Completed(context.Background(), Job{Build: successfulBuild()})
	assert.Empty(t, report.Attempts)
}

func TestNewNotifier_RequiresCollector(t *testing.T) {
	_, err := NewNotifier(fullConfig(), Deps{Source: provider.NewMemorySource()})
	assert.Error(t, err)
}

func TestCompleted_PublishesBuildAndSecondaryData(t *testing.T) {
	h := newHarness(t)
	b := successfulBuild()
	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b))

	report := n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t), Env: map[string]string{"JENKINS_URL": "http://ci/"}})

	require.Len(t, report.Attempts, 3)
	assert.Empty(t, report.Failed())
	assert.Equal(t, []string{KindBuild, KindArtifact, KindTest},
		[]string{report.Attempts[0].Kind, report.Attempts[1].Kind, report.Attempts[2].Kind})

	builds := h.stub.Received(collector.PathBuild)
	require.Len(t, builds, 1)
	var event contracts.BuildEvent
	require.NoError(t, json.Unmarshal(builds[0].Body, &event))
	assert.Equal(t, "SUCCESS", event.BuildStatus)
	assert.Equal(t, int64(1500), event.EndTime)
	assert.Equal(t, "http://ci/job/app/7/", event.BuildURL)
	assert.Equal(t, "http://ci/", event.InstanceURL)
	require.Len(t, event.SourceChangeSet, 1)
	assert.Equal(t, "fix build", event.SourceChangeSet[0].Message)

	var art artifact.Descriptor
	require.NoError(t, json.Unmarshal(h.stub.Received(collector.PathArtifact)[0].Body, &art))
	assert.Equal(t, builds[0].ID, art.BuildID)
	assert.Equal(t, "app.jar", art.ArtifactName)
	assert.Equal(t, "1.2.3", art.Version)

	var tests contracts.TestDataCreateRequest
	require.NoError(t, json.Unmarshal(h.stub.Received(collector.PathTest)[0].Body, &tests))
	assert.Equal(t, builds[0].ID, tests.BuildID)
	assert.Equal(t, 1, tests.SuccessCount)

	assert.Contains(t, h.logs.String(), "Hygieia: Published Build Complete Data. Response Code: 201.")
	assert.Contains(t, h.logs.String(), "Hygieia: Published Build Artifact Data. Filename=app-1.2.3.jar, Name=app.jar, Version=1.2.3, Group=com.example.")
}

func TestCompleted_QuotedBuildIDFlowsIntoArtifact(t *testing.T) {
	var mu sync.Mutex
	var artifactBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/artifact" {
			mu.Lock()
			artifactBody = body
			mu.Unlock()
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"abc123"`))
	}))
	defer ts.Close()

	b := successfulBuild()
	cfg := &config.Config{APIURL: ts.URL, Artifact: &artifact.Spec{Directory: "target", NamePattern: "*.jar"}}
	n, err := NewNotifier(cfg, Deps{Collector: collector.NewClient(ts.URL, ""), Source: provider.NewMemorySource(b)})
	require.NoError(t, err)

	report := n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t)})
	assert.Equal(t, "abc123", report.BuildID)

	mu.Lock()
	defer mu.Unlock()
	var d artifact.Descriptor
	require.NoError(t, json.Unmarshal(artifactBody, &d))
	assert.Equal(t, "abc123", d.BuildID)
}

func TestCompleted_ArtifactFailureDoesNotBlockTests(t *testing.T) {
	h := newHarness(t)
	h.stub.FailWith(collector.PathArtifact, http.StatusInternalServerError)
	b := successfulBuild()
	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b))

	report := n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t)})

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, KindArtifact, failed[0].Kind)
	assert.Equal(t, "app-1.2.3.jar", failed[0].Name)
	assert.Len(t, h.stub.Received(collector.PathTest), 1)
	assert.Contains(t, h.logs.String(), "Hygieia: ERROR Failed Publishing Build Artifact Data. Filename=app-1.2.3.jar")
}

func TestCompleted_FailedBuildSkipsSecondaryData(t *testing.T) {
	h := newHarness(t)
	b := successfulBuild()
	b.Result = provider.ResultFailure
	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b))

	report := n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t)})

	require.Len(t, report.Attempts, 1)
	assert.Equal(t, KindBuild, report.Attempts[0].Kind)
	assert.Empty(t, h.stub.Received(collector.PathArtifact))
	assert.Equal(t, status.Failure, report.Status)
}

func TestCompleted_BuildRejectedSkipsSecondaryData(t *testing.T) {
	h := newHarness(t)
	h.stub.FailWith(collector.PathBuild, http.StatusBadRequest)
	b := successfulBuild()
	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b))

	report := n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t)})

	require.Len(t, report.Attempts, 1)
	assert.Empty(t, h.stub.Received(""))
}

func TestCompleted_NothingToPublish(t *testing.T) {
	h := newHarness(t)
	b := successfulBuild()
	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b))

	report := n.Completed(context.Background(), Job{Build: b, Workspace: t.TempDir()})

	require.Len(t, report.Attempts, 1)
	assert.Contains(t, h.logs.String(), "Hygieia: Published Test Data. Nothing to publish")
}

func TestCompleted_BackToNormalUsesHistoryAndUpstream(t *testing.T) {
	h := newHarness(t)
	upstream := &provider.Build{
		Project: "lib", Number: 3,
		ChangeSet: &provider.ChangeSet{Entries: []provider.Entry{{CommitID: "u1", AuthorID: "bob", Message: "lib change"}}},
	}
	history := []*provider.Build{
		{Project: "app", Number: 4, Result: provider.ResultSuccess, StartTime: 0, Duration: 1000},
		{Project: "app", Number: 5, Result: provider.ResultFailure},
		{Project: "app", Number: 6, Result: provider.ResultAborted},
	}
	b := &provider.Build{
		Project: "app", Number: 7, URL: "http://ci/job/app/", StartTime: 60_000, Duration: 2000,
		Result: provider.ResultSuccess, Upstream: &provider.UpstreamCause{Project: "lib", Number: 3},
	}
	src := provider.NewMemorySource(append(history, b, upstream)...)
	n := h.notifier(t, &config.Config{APIURL: "x", Build: &config.BuildSpec{}}, src)

	report := n.Completed(context.Background(), Job{Build: b})

	assert.Equal(t, status.BackToNormal, report.Status)
	assert.Equal(t, "app - #7 Back to normal after 1 min 1 sec (http://ci/job/app/7/)", report.StatusMessage)
	require.Len(t, report.Event.SourceChangeSet, 1)
	assert.Equal(t, "u1", report.Event.SourceChangeSet[0].RevisionID)
	assert.Equal(t, "bob", report.Event.SourceChangeSet[0].Author)
}

func TestStarted(t *testing.T) {
	b := successfulBuild()
	b.Building = true

	t.Run("no start publishing configured", func(t *testing.T) {
		h := newHarness(t)
		n := h.notifier(t, &config.Config{APIURL: "x", Build: &config.BuildSpec{}}, provider.NewMemorySource(b))

		report := n.Started(context.Background(), Job{Build: b})
		assert.Empty(t, report.Attempts)
		assert.Equal(t, status.Starting, report.Status)
	})

	t.Run("publish build start", func(t *testing.T) {
		h := newHarness(t)
		cfg := &config.Config{APIURL: "x", Build: &config.BuildSpec{PublishBuildStart: true}}
		n := h.notifier(t, cfg, provider.NewMemorySource(b))

		report := n.Started(context.Background(), Job{Build: b})
		require.Len(t, report.Attempts, 1)
		assert.Equal(t, contracts.BuildStatusInProgress, report.Event.BuildStatus)
		assert.Zero(t, report.Event.EndTime)
		assert.Zero(t, report.Event.Duration)
		assert.NotEmpty(t, report.BuildID)
	})
}

func TestCompleted_LedgerAndMirror(t *testing.T) {
	h := newHarness(t)
	b := successfulBuild()
	ledger := store.NewInMemoryStore()
	mirror := broker.NewInMemoryBroker()
	defer mirror.Close()
	events, err := mirror.Subscribe(context.Background(), contracts.TopicBuilds, "test")
	require.NoError(t, err)
	results, err := mirror.Subscribe(context.Background(), contracts.TopicPublishResults, "test")
	require.NoError(t, err)

	n := h.notifier(t, fullConfig(), provider.NewMemorySource(b), func(d *Deps) {
		d.Ledger = ledger
		d.Mirror = mirror
	})
	n.Completed(context.Background(), Job{Build: b, Workspace: workspace(t)})

	recs, err := ledger.Records(context.Background(), "app", 7)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, PhaseCompleted, recs[0].Phase)
	assert.Equal(t, collector.PathBuild, recs[0].Endpoint)
	assert.True(t, recs[0].Succeeded)

	msg := <-events
	assert.Equal(t, "app", msg.Key)
	assert.Contains(t, string(msg.Value), `"buildStatus":"SUCCESS"`)

	for i, want := range recs {
		res := <-results
		assert.Equal(t, "app", res.Key)
		var got contracts.PublishRecord
		require.NoError(t, json.Unmarshal(res.Value, &got))
		assert.Equal(t, want.Endpoint, got.Endpoint, "result %d", i)
		assert.Equal(t, want.ID, got.ID, "result %d carries the ledger id", i)
		assert.Equal(t, want.Succeeded, got.Succeeded, "result %d", i)
	}
}

func TestResultLabel(t *testing.T) {
	down := fmt.Errorf("%w: dial tcp: connection refused", provider.ErrCollectorDown)

	assert.Equal(t, metrics.ResultCreated, resultLabel(collector.Response{Code: 201, Value: "id"}))
	assert.Equal(t, metrics.ResultError, resultLabel(collector.Response{Err: down}))
	assert.Equal(t, metrics.ResultFailed, resultLabel(collector.Response{Code: 500, Err: errors.New("internal error")}))
	assert.Equal(t, metrics.ResultFailed, resultLabel(collector.Response{Err: errors.New("encode request")}))
}

func TestInstanceURL(t *testing.T) {
	b := &provider.Build{Project: "app", URL: "https://ci.example.com/jenkins/job/app/"}

	assert.Equal(t, "http://env/", InstanceURL(b, map[string]string{"JENKINS_URL": "http://env/"}))
	assert.Equal(t, "https://ci.example.com/jenkins", InstanceURL(b, nil))

	other := &provider.Build{Project: "app", URL: "https://ci.example.com/view/all/app/"}
	assert.Equal(t, "https://ci.example.com", InstanceURL(other, nil))
}
