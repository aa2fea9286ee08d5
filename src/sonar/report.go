// Package sonar reads a static-analysis measures report and turns it into
// the collector's code quality payload.
package sonar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"hygieia-reporter/src/contracts"
)

// Spec configures static-analysis publishing.
type Spec struct {
	PublishBuildStart bool   `mapstructure:"publish_build_start"`
	ReportFile        string `mapstructure:"report_file"`
}

// Report is the measures document written by the analysis step. It follows
// the shape of SonarQube's api/measures/component response.
type Report struct {
	ServerURL string    `json:"serverUrl"`
	Component Component `json:"component"`
}

// Component is the analysed project.
type Component struct {
	ID       string    `json:"id"`
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Measures []Measure `json:"measures"`
}

// Measure is one metric value.
type Measure struct {
	Metric         string `json:"metric"`
	Value          string `json:"value"`
	FormattedValue string `json:"formattedValue"`
	Status         string `json:"status"`
}

// ReadReport loads the report at root/path.
func ReadReport(root, path string) (*Report, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis report: %w", err)
	}
	return ParseReport(data)
}

// ParseReport decodes a measures document. A report without a component
// name is rejected.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse analysis report: %w", err)
	}
	if r.Component.Name == "" && r.Component.Key == "" {
		return nil, fmt.Errorf("parse analysis report: no component")
	}
	return &r, nil
}

// Request builds the code quality request for buildID. Metrics are sorted by
// name; measures without a metric name are dropped.
func (r *Report) Request(buildID, niceName string, timestamp int64) *contracts.CodeQualityCreateRequest {
	name := r.Component.Name
	if name == "" {
		name = r.Component.Key
	}

	req := &contracts.CodeQualityCreateRequest{
		BuildID:        buildID,
		ProjectName:    name,
		ProjectID:      r.Component.ID,
		ProjectVersion: r.Component.Version,
		ServerURL:      r.ServerURL,
		NiceName:       niceName,
		Timestamp:      timestamp,
		Metrics:        []contracts.CodeQualityMetric{},
	}
	if r.ServerURL != "" && r.Component.Key != "" {
		req.ProjectURL = r.ServerURL + "/dashboard?id=" + r.Component.Key
	}

	for _, m := range r.Component.Measures {
		if m.Metric == "" {
			continue
		}
		formatted := m.FormattedValue
		if formatted == "" {
			formatted = m.Value
		}
		req.Metrics = append(req.Metrics, contracts.CodeQualityMetric{
			Name:           m.Metric,
			Value:          m.Value,
			FormattedValue: formatted,
			Status:         m.Status,
		})
	}
	sort.Slice(req.Metrics, func(i, j int) bool { return req.Metrics[i].Name < req.Metrics[j].Name })
	return req
}
