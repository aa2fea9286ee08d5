package mcp

import "sync"

// PreviewStore keeps previews for drill-down by ID.
type PreviewStore interface {
	Store(p *Preview)
	Get(id string) (*Preview, bool)
}

// InMemoryStore is a thread-safe in-memory implementation of PreviewStore.
// It keeps at most limit previews, dropping the oldest first.
type InMemoryStore struct {
	mu       sync.RWMutex
	limit    int
	order    []string
	previews map[string]*Preview
}

// NewInMemoryStore creates a store that keeps up to limit previews.
func NewInMemoryStore(limit int) *InMemoryStore {
	if limit <= 0 {
		limit = 50
	}
	return &InMemoryStore{
		limit:    limit,
		previews: make(map[string]*Preview),
	}
}

// Store saves p under p.ID.
func (s *InMemoryStore) Store(p *Preview) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.previews[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.previews[p.ID] = p

	for len(s.order) > s.limit {
		delete(s.previews, s.order[0])
		s.order = s.order[1:]
	}
}

// Get retrieves a preview by ID.
func (s *InMemoryStore) Get(id string) (*Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.previews[id]
	return p, ok
}
