// Package tui provides the interactive view of the `watch` command: a live
// list of build events read from the broker mirror, with the selected
// event's details and commits beside it.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hygieia-reporter/src/broker"
	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/status"
)

// Item is one mirrored build event. It implements bubbles/list.Item.
type Item struct {
	Event    *contracts.BuildEvent
	Received time.Time
}

// DecodeItem turns a broker message into an Item.
func DecodeItem(msg broker.Message) (Item, error) {
	var event contracts.BuildEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return Item{}, fmt.Errorf("decode %s message at offset %d: %w", msg.Topic, msg.Offset, err)
	}
	received := time.Now()
	if msg.Timestamp > 0 {
		received = time.UnixMilli(msg.Timestamp)
	}
	return Item{Event: &event, Received: received}, nil
}

// FilterValue is the value used for filtering.
func (i Item) FilterValue() string { return i.Event.JobName }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return fmt.Sprintf("%s #%s", i.Event.JobName, i.Event.Number) }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.Event.BuildStatus }

// Label maps the event's build status onto a status label for coloring.
func (i Item) Label() status.Label {
	if i.Event.BuildStatus == contracts.BuildStatusInProgress {
		return status.Starting
	}
	switch provider.ParseResult(i.Event.BuildStatus) {
	case provider.ResultSuccess:
		return status.Success
	case provider.ResultUnstable:
		return status.Unstable
	case provider.ResultFailure:
		return status.Failure
	case provider.ResultAborted:
		return status.Aborted
	case provider.ResultNotBuilt:
		return status.NotBuilt
	default:
		return status.Unknown
	}
}

// matches reports whether the job name or a commit message contains query.
func (i Item) matches(query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(i.Event.JobName), query) {
		return true
	}
	for _, c := range i.Event.SourceChangeSet {
		if strings.Contains(strings.ToLower(c.Message), query) ||
			strings.Contains(strings.ToLower(c.Author), query) {
			return true
		}
	}
	return false
}
