package memory

import (
	"context"
	"sync"

	"personaforge/internal/transparency"
)

// InMemoryStore keeps audit events in process memory, for tests and
// single-node development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []transparency.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event transparency.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByPersona(_ context.Context, personaID string) ([]transparency.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []transparency.Event
	for _, event := range s.events {
		if event.PersonaID == personaID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (s *InMemoryStore) ListByOperations(_ context.Context, operations []transparency.Operation) ([]transparency.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[transparency.Operation]struct{}, len(operations))
	for _, op := range operations {
		wanted[op] = struct{}{}
	}
	var matched []transparency.Event
	for _, event := range s.events {
		if _, ok := wanted[event.Operation]; ok {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// ListRecent returns the newest limit events in append order; limit <= 0
// means all.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]transparency.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	return append([]transparency.Event{}, s.events[start:]...), nil
}
