package memory

import (
	"context"
	"sync"

	id "gesher/pkg/domain"
	"gesher/pkg/platform/audit"
)

// InMemoryStore keeps audit events in memory, ordered by append time.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

var _ audit.Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(ctx context.Context, phone id.Phone) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Phone == phone {
			out = append(out, e)
		}
	}
	return out, nil
}
