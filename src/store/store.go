// Package store persists a ledger of collector requests and, for Postgres,
// serves build snapshots to the resolver.
package store

import (
	"context"
	"fmt"

	"hygieia-reporter/src/contracts"
)

// Ledger records every collector request the notifier makes.
type Ledger interface {
	// Record appends one publish attempt. An empty ID is filled in.
	Record(ctx context.Context, rec *contracts.PublishRecord) error

	// Records returns the attempts for one build in the order they were made.
	Records(ctx context.Context, jobName string, buildNumber int) ([]contracts.PublishRecord, error)

	// Close closes the store connection
	Close() error
}

// ErrNotFound is returned when a build has no ledger entries.
type ErrNotFound struct {
	JobName     string
	BuildNumber int
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("no publish records for %s #%d", e.JobName, e.BuildNumber)
}
