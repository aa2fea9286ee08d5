// Package scm turns a build's change set into the commit list published with
// every build event.
package scm

// Commit is one source change as the collector models it. Two commits with
// the same RevisionID are the same commit.
type Commit struct {
	URL             string `json:"scmUrl,omitempty"`
	Branch          string `json:"scmBranch,omitempty"`
	RevisionID      string `json:"scmRevisionNumber"`
	Message         string `json:"scmCommitLog"`
	Author          string `json:"scmAuthor"`
	Timestamp       int64  `json:"scmCommitTimestamp"` // -1 when the host cannot pin the commit to an instant
	NumberOfChanges int64  `json:"numberOfChanges"`
}

// HasTimestamp reports whether Timestamp is an actual instant.
func (c Commit) HasTimestamp() bool {
	return c.Timestamp >= 0
}
