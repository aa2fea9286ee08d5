// Package mcp exposes the reporter's dry-run computations as MCP tools, so an
// assistant can inspect what a build would publish without touching the
// collector.
package mcp

import (
	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/contracts"
)

// Preview is everything a lifecycle event would publish for one build.
type Preview struct {
	ID            string                `json:"preview_id"`
	Event         *contracts.BuildEvent `json:"event"`
	Status        string                `json:"status"`
	StatusMessage string                `json:"status_message"`
	Artifacts     []artifact.Descriptor `json:"artifacts"`
}

// Manifest is the compact answer of preview_build_event. Details are
// fetched with get_preview_details.
type Manifest struct {
	PreviewID     string   `json:"preview_id"`
	Job           string   `json:"job"`
	Number        string   `json:"number"`
	BuildStatus   string   `json:"build_status"`
	Status        string   `json:"status"`
	StatusMessage string   `json:"status_message"`
	CommitCount   int      `json:"commit_count"`
	Revisions     []string `json:"revisions"`
	Artifacts     []string `json:"artifacts"`
}

// ToManifest summarizes p.
func ToManifest(p *Preview) Manifest {
	m := Manifest{
		PreviewID:     p.ID,
		Status:        p.Status,
		StatusMessage: p.StatusMessage,
		Revisions:     []string{},
		Artifacts:     []string{},
	}
	if p.Event != nil {
		m.Job = p.Event.JobName
		m.Number = p.Event.Number
		m.BuildStatus = p.Event.BuildStatus
		m.CommitCount = len(p.Event.SourceChangeSet)
		for _, c := range p.Event.SourceChangeSet {
			m.Revisions = append(m.Revisions, c.RevisionID)
		}
	}
	for _, d := range p.Artifacts {
		m.Artifacts = append(m.Artifacts, d.CanonicalName)
	}
	return m
}
