package cache

import (
	"context"
	"sync"

	"gesher/pkg/platform/sentinel"
)

// InMemoryStore holds the snapshot in memory. Used by tests.
type InMemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.snap
	return &clone, nil
}

func (s *InMemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *snap
	s.snap = &clone
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}
