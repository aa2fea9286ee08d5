package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"hygieia-reporter/src/contracts"
	"hygieia-reporter/src/provider"
)

// InMemoryStore is a thread-safe in-memory Ledger.
// Used by tests and when no DSN is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[provider.BuildKey][]contracts.PublishRecord
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[provider.BuildKey][]contracts.PublishRecord),
	}
}

// Record appends rec under its job and build number.
func (s *InMemoryStore) Record(ctx context.Context, rec *contracts.PublishRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := provider.BuildKey{Project: rec.JobName, Number: rec.BuildNumber}
	s.records[key] = append(s.records[key], *rec)
	return nil
}

// Records returns a copy of the records for one build.
func (s *InMemoryStore) Records(ctx context.Context, jobName string, buildNumber int) ([]contracts.PublishRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, ok := s.records[provider.BuildKey{Project: jobName, Number: buildNumber}]
	if !ok {
		return nil, ErrNotFound{JobName: jobName, BuildNumber: buildNumber}
	}
	return append([]contracts.PublishRecord(nil), recs...), nil
}

// Close is a no-op for in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
