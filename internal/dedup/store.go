package dedup

import (
	"context"
	"sync"
)

// Store remembers which tickets already produced an incident.
// Entries are never removed.
type Store interface {
	HasTriggered(ctx context.Context, ticketID string) (bool, error)
	MarkTriggered(ctx context.Context, ticketID string) error
}

// MemoryStore keeps triggered ticket ids for the lifetime of the process
type MemoryStore struct {
	mu        sync.RWMutex
	triggered map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{triggered: make(map[string]struct{})}
}

func (s *MemoryStore) HasTriggered(_ context.Context, ticketID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.triggered[ticketID]
	return ok, nil
}

func (s *MemoryStore) MarkTriggered(_ context.Context, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggered[ticketID] = struct{}{}
	return nil
}

// Len reports how many tickets have been marked
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triggered)
}
