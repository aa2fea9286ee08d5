package provider

import (
	"strconv"
	"strings"
)

// Result is the terminal outcome reported by the CI host for a build.
type Result string

const (
	ResultSuccess  Result = "SUCCESS"
	ResultUnstable Result = "UNSTABLE"
	ResultFailure  Result = "FAILURE"
	ResultAborted  Result = "ABORTED"
	ResultNotBuilt Result = "NOT_BUILT"
	ResultUnknown  Result = ""
)

// ParseResult maps a host result string onto a Result, case-insensitively.
// Anything unrecognised is ResultUnknown.
func ParseResult(s string) Result {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return ResultSuccess
	case "UNSTABLE":
		return ResultUnstable
	case "FAILURE":
		return ResultFailure
	case "ABORTED":
		return ResultAborted
	case "NOT_BUILT", "NOTBUILT":
		return ResultNotBuilt
	default:
		return ResultUnknown
	}
}

// String returns the host spelling; unknown results render as "UNKNOWN".
func (r Result) String() string {
	if r == ResultUnknown {
		return "UNKNOWN"
	}
	return string(r)
}

// UnmarshalText normalizes results read from snapshots and stored builds
// through ParseResult, so "success" and "SUCCESS" are the same result.
func (r *Result) UnmarshalText(text []byte) error {
	*r = ParseResult(string(text))
	return nil
}

// Publishable reports whether secondary payloads (artifacts, tests, quality,
// deploys) should be sent for a build with this result.
func (r Result) Publishable() bool {
	return r == ResultSuccess || r == ResultUnstable
}

// Build is a read-only snapshot of one CI build, as supplied by the host.
type Build struct {
	Project   string         `json:"project" yaml:"project"`
	Number    int            `json:"number" yaml:"number"`
	URL       string         `json:"url" yaml:"url"` // absolute URL of the project, ends in "/"
	StartTime int64          `json:"startTime" yaml:"startTime"`
	Duration  int64          `json:"duration" yaml:"duration"`
	Result    Result         `json:"result" yaml:"result"`
	Building  bool           `json:"building" yaml:"building"`
	StartedBy string         `json:"startedBy,omitempty" yaml:"startedBy,omitempty"`
	ChangeSet *ChangeSet     `json:"changeSet,omitempty" yaml:"changeSet,omitempty"`
	Upstream  *UpstreamCause `json:"upstream,omitempty" yaml:"upstream,omitempty"`
}

// Key identifies the build within its host.
func (b *Build) Key() BuildKey {
	return BuildKey{Project: b.Project, Number: b.Number}
}

// BuildURL is the project URL with the build number appended.
func (b *Build) BuildURL() string {
	return b.URL + strconv.Itoa(b.Number) + "/"
}

// EndTime is StartTime + Duration.
func (b *Build) EndTime() int64 {
	return b.StartTime + b.Duration
}

// HasChanges reports whether the build carries at least one change entry.
func (b *Build) HasChanges() bool {
	return b.ChangeSet != nil && len(b.ChangeSet.Entries) > 0
}

// BuildKey is the (project, number) pair used to look up builds.
type BuildKey struct {
	Project string
	Number  int
}

func (k BuildKey) String() string {
	return k.Project + "#" + strconv.Itoa(k.Number)
}

// ChangeSet is the ordered list of SCM entries that belong to one build.
type ChangeSet struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Entry is one change in a change set. Parent, when set, points at the change
// set of a merge parent.
type Entry struct {
	CommitID      string     `json:"commitId" yaml:"commitId"`
	AuthorID      string     `json:"authorId" yaml:"authorId"`
	AuthorName    string     `json:"authorName" yaml:"authorName"`
	Message       string     `json:"message" yaml:"message"`
	AffectedFiles *int       `json:"affectedFiles,omitempty" yaml:"affectedFiles,omitempty"`
	Timestamp     int64      `json:"timestamp" yaml:"timestamp"`
	Parent        *ChangeSet `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// UpstreamCause records that a build was triggered by another build.
type UpstreamCause struct {
	Project string `json:"project" yaml:"project"`
	Number  int    `json:"number" yaml:"number"`
}

// Key returns the upstream build's key.
func (u UpstreamCause) Key() BuildKey {
	return BuildKey{Project: u.Project, Number: u.Number}
}
