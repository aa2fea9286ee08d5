package junit

import (
	"fmt"
	"os"
	"path/filepath"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/provider"
)

// Test suite types accepted by the collector.
const (
	TypeUnit        = "Unit"
	TypeIntegration = "Integration"
	TypeFunctional  = "Functional"
	TypeRegression  = "Regression"
	TypePerformance = "Performance"
	TypeSecurity    = "Security"
)

// Types lists the valid suite types in display order.
var Types = []string{TypeUnit, TypeIntegration, TypeFunctional, TypeRegression, TypePerformance, TypeSecurity}

// Spec configures test result publishing.
type Spec struct {
	PublishTestStart bool   `mapstructure:"publish_test_start"`
	FileNamePattern  string `mapstructure:"file_name_pattern"`
	ResultsDirectory string `mapstructure:"results_directory"`
	TestType         string `mapstructure:"test_type"`
}

// Job carries the build fields copied into a test request.
type Job struct {
	Build       *provider.Build
	BuildID     string
	NiceName    string
	InstanceURL string
}

// Collect finds the result files described by spec under root and summarizes
// them. It returns nil when no file yields a test suite; unreadable or
// malformed files are logged and skipped.
func Collect(spec Spec, root string, job Job, log logger.Logger) *contracts.TestDataCreateRequest {
	dir := filepath.Join(root, spec.ResultsDirectory)
	testType := spec.TestType
	if testType == "" {
		testType = TypeUnit
	}

	var capabilities []contracts.TestCapability
	for _, m := range artifact.FindFiles(dir, spec.FileNamePattern, log) {
		data, err := os.ReadFile(m.Path)
		if err != nil {
			log.Warn("Cannot read test results %s: %v", m.Path, err)
			continue
		}
		suites, err := ParseSuites(data)
		if err != nil {
			log.Warn("Skipping %s: %v", m.Path, err)
			continue
		}
		capabilities = append(capabilities, Capability(m.Name, testType, job.BuildID, suites))
	}
	if len(capabilities) == 0 {
		return nil
	}

	b := job.Build
	req := &contracts.TestDataCreateRequest{
		BuildID:          job.BuildID,
		ExecutionID:      job.BuildID,
		TestJobName:      b.Project,
		TestJobURL:       b.URL,
		ServerURL:        job.InstanceURL,
		NiceName:         job.NiceName,
		Type:             testType,
		Description:      fmt.Sprintf("%s #%d", b.Project, b.Number),
		Timestamp:        b.EndTime(),
		StartTime:        b.StartTime,
		EndTime:          b.EndTime(),
		Duration:         b.Duration,
		TestCapabilities: capabilities,
	}
	for _, c := range capabilities {
		for _, s := range c.TestSuites {
			req.TotalCount += s.TotalTestCaseCount
			req.SuccessCount += s.SuccessTestCaseCount
			req.FailureCount += s.FailedTestCaseCount
			req.SkippedCount += s.SkippedTestCaseCount
		}
	}
	return req
}

// Capability summarizes the suites of one results file.
func Capability(description, testType, executionID string, suites []TestSuite) contracts.TestCapability {
	c := contracts.TestCapability{
		Description: description,
		Type:        testType,
		ExecutionID: executionID,
	}
	for _, s := range suites {
		suite := summarizeSuite(s, testType)
		c.Duration += suite.Duration
		c.TotalTestSuiteCount++
		switch {
		case suite.FailedTestCaseCount > 0:
			c.FailedTestSuiteCount++
		case suite.TotalTestCaseCount > 0 && suite.SkippedTestCaseCount == suite.TotalTestCaseCount:
			c.SkippedTestSuiteCount++
		default:
			c.SuccessTestSuiteCount++
		}
		c.TestSuites = append(c.TestSuites, suite)
	}
	return c
}

func summarizeSuite(s TestSuite, testType string) contracts.TestSuite {
	suite := contracts.TestSuite{
		ID:          s.Name,
		Description: s.Name,
		Type:        testType,
		Duration:    millis(s.Time),
	}
	for _, tc := range s.TestCases {
		c := contracts.TestCase{
			ID:          tc.ClassName + "." + tc.Name,
			Description: tc.Name,
			Duration:    millis(tc.Time),
		}
		switch {
		case tc.Failure != nil:
			c.Status = contracts.TestCaseFailure
			c.Message = tc.Failure.Message
			suite.FailedTestCaseCount++
		case tc.Error != nil:
			c.Status = contracts.TestCaseFailure
			c.Message = tc.Error.Message
			suite.FailedTestCaseCount++
		case tc.Skipped != nil:
			c.Status = contracts.TestCaseSkipped
			c.Message = tc.Skipped.Message
			suite.SkippedTestCaseCount++
		default:
			c.Status = contracts.TestCaseSuccess
			suite.SuccessTestCaseCount++
		}
		suite.TestCases = append(suite.TestCases, c)
	}
	suite.TotalTestCaseCount = len(s.TestCases)
	return suite
}

// millis converts a JUnit time attribute to milliseconds.
func millis(s float64) int64 {
	return int64(s*1000 + 0.5)
}
