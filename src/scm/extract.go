package scm

import (
	"strings"

	"hygieia-reporter/src/provider"
)

// ExtractCommits flattens the build's change set into an ordered,
// duplicate-free commit list. Entries are taken in encounter order and the
// first commit seen for a revision wins. Parent change sets (merge parents)
// are walked after the entry that declares them, deduplicated against
// everything collected so far.
func ExtractCommits(build *provider.Build) []Commit {
	if build == nil || build.ChangeSet == nil {
		return []Commit{}
	}

	x := extractor{
		seen:   make(map[string]bool),
		walked: make(map[*provider.ChangeSet]bool),
	}
	x.walk(build.ChangeSet)
	return x.commits
}

type extractor struct {
	commits []Commit
	seen    map[string]bool
	walked  map[*provider.ChangeSet]bool
}

// frame is a change set being walked and the index of its next entry.
type frame struct {
	set  *provider.ChangeSet
	next int
}

// walk visits change sets depth-first with an explicit stack, so a parent
// set is fully collected before the entry after the one that declared it.
func (x *extractor) walk(root *provider.ChangeSet) {
	x.walked[root] = true
	stack := []*frame{{set: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.set.Entries) {
			stack = stack[:len(stack)-1]
			continue
		}

		entry := top.set.Entries[top.next]
		top.next++

		x.add(toCommit(entry))

		parent := entry.Parent
		if parent != nil && parent != top.set && !x.walked[parent] {
			x.walked[parent] = true
			stack = append(stack, &frame{set: parent})
		}
	}
}

func (x *extractor) add(c Commit) {
	if x.seen[c.RevisionID] {
		return
	}
	x.seen[c.RevisionID] = true
	x.commits = append(x.commits, c)
}

func toCommit(e provider.Entry) Commit {
	author := e.AuthorName
	if strings.TrimSpace(author) == "" {
		author = e.AuthorID
	}

	var changes int64
	if e.AffectedFiles != nil {
		changes = int64(*e.AffectedFiles)
	}

	return Commit{
		RevisionID:      e.CommitID,
		Message:         e.Message,
		Author:          author,
		Timestamp:       e.Timestamp,
		NumberOfChanges: changes,
	}
}
