// Package contracts defines the records exchanged with the dashboard
// collector and mirrored onto the event broker.
package contracts

import "hygieia-reporter/src/scm"

// BuildStatusInProgress is the status published when a build starts.
const BuildStatusInProgress = "InProgress"

// BuildEvent is the body of POST /build.
type BuildEvent struct {
	// Display name of the CI instance.
	NiceName string `json:"niceName,omitempty"`
	JobName  string `json:"jobName"`
	// Absolute URL of the job (project).
	JobURL string `json:"jobUrl"`
	// JobURL + number + "/".
	BuildURL string `json:"buildUrl"`
	// Root URL of the CI instance.
	InstanceURL string `json:"instanceUrl"`
	Number      string `json:"number"`
	StartTime   int64  `json:"startTime"`
	// StartTime + Duration; zero while in progress.
	EndTime  int64 `json:"endTime"`
	Duration int64 `json:"duration"`
	// "InProgress" or the terminal result (SUCCESS, FAILURE, ...).
	BuildStatus string `json:"buildStatus"`
	StartedBy   string `json:"startedBy,omitempty"`
	// Commits of the build, or of the upstream build that triggered it.
	SourceChangeSet []scm.Commit `json:"sourceChangeSet"`
}

// TestDataCreateRequest is the body of POST /quality/test.
type TestDataCreateRequest struct {
	BuildID          string           `json:"buildId"`
	ExecutionID      string           `json:"executionId"`
	TestJobName      string           `json:"testJobName"`
	TestJobURL       string           `json:"testJobUrl"`
	ServerURL        string           `json:"serverUrl"`
	NiceName         string           `json:"niceName,omitempty"`
	Type             string           `json:"type"`
	Description      string           `json:"description"`
	Timestamp        int64            `json:"timestamp"`
	StartTime        int64            `json:"startTime"`
	EndTime          int64            `json:"endTime"`
	Duration         int64            `json:"duration"`
	TotalCount       int              `json:"totalCount"`
	SuccessCount     int              `json:"successCount"`
	FailureCount     int              `json:"failureCount"`
	SkippedCount     int              `json:"skippedCount"`
	TestCapabilities []TestCapability `json:"testCapabilities"`
}

// TestCapability groups the suites found in one results file.
type TestCapability struct {
	Description           string      `json:"description"`
	Type                  string      `json:"type"`
	ExecutionID           string      `json:"executionId"`
	Duration              int64       `json:"duration"`
	TotalTestSuiteCount   int         `json:"totalTestSuiteCount"`
	SuccessTestSuiteCount int         `json:"successTestSuiteCount"`
	FailedTestSuiteCount  int         `json:"failedTestSuiteCount"`
	SkippedTestSuiteCount int         `json:"skippedTestSuiteCount"`
	TestSuites            []TestSuite `json:"testSuites"`
}

// TestSuite summarizes one suite.
type TestSuite struct {
	ID                   string     `json:"id"`
	Description          string     `json:"description"`
	Type                 string     `json:"type"`
	Duration             int64      `json:"duration"`
	TotalTestCaseCount   int        `json:"totalTestCaseCount"`
	SuccessTestCaseCount int        `json:"successTestCaseCount"`
	FailedTestCaseCount  int        `json:"failedTestCaseCount"`
	SkippedTestCaseCount int        `json:"skippedTestCaseCount"`
	TestCases            []TestCase `json:"testCases"`
}

// TestCase status values.
const (
	TestCaseSuccess = "Success"
	TestCaseFailure = "Failure"
	TestCaseSkipped = "Skipped"
)

// TestCase is one executed test.
type TestCase struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Duration    int64  `json:"duration"`
	Message     string `json:"message,omitempty"`
}

// CodeQualityCreateRequest is the body of POST /quality/static-analysis.
type CodeQualityCreateRequest struct {
	BuildID        string              `json:"buildId"`
	ProjectName    string              `json:"projectName"`
	ProjectURL     string              `json:"projectUrl,omitempty"`
	ProjectID      string              `json:"projectId,omitempty"`
	ProjectVersion string              `json:"projectVersion,omitempty"`
	ServerURL      string              `json:"serverUrl,omitempty"`
	NiceName       string              `json:"niceName,omitempty"`
	Timestamp      int64               `json:"timestamp"`
	Metrics        []CodeQualityMetric `json:"metrics"`
}

// CodeQualityMetric is one static-analysis measure.
type CodeQualityMetric struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	FormattedValue string `json:"formattedValue,omitempty"`
	Status         string `json:"status,omitempty"`
}

// DeployDataCreateRequest is the body of POST /deploy.
type DeployDataCreateRequest struct {
	BuildID         string `json:"buildId"`
	ExecutionID     string `json:"executionId"`
	JobName         string `json:"jobName"`
	JobURL          string `json:"jobUrl"`
	InstanceURL     string `json:"instanceUrl"`
	NiceName        string `json:"niceName,omitempty"`
	AppName         string `json:"appName"`
	EnvName         string `json:"envName"`
	ArtifactName    string `json:"artifactName"`
	ArtifactGroup   string `json:"artifactGroup"`
	ArtifactVersion string `json:"artifactVersion"`
	DeployStatus    string `json:"deployStatus"`
	StartTime       int64  `json:"startTime"`
	EndTime         int64  `json:"endTime"`
	Duration        int64  `json:"duration"`
	StartedBy       string `json:"startedBy,omitempty"`
}

// PublishRecord is the ledger entry written for every collector request.
type PublishRecord struct {
	ID           string `json:"id"`
	JobName      string `json:"job_name"`
	BuildNumber  int    `json:"build_number"`
	Phase        string `json:"phase"` // started, completed
	Kind         string `json:"kind"`  // build, artifact, test, static-analysis, deploy
	Endpoint     string `json:"endpoint"`
	ResponseCode int    `json:"response_code"`
	ResponseBody string `json:"response_body"`
	Succeeded    bool   `json:"succeeded"`
	Timestamp    int64  `json:"timestamp"`
}

// Topic names used when mirroring collector traffic onto the broker.
const (
	// TopicBuilds carries every BuildEvent published to the collector.
	TopicBuilds = "hygieia.builds"

	// TopicPublishResults carries one PublishRecord per collector request.
	TopicPublishResults = "hygieia.publish.results"
)
