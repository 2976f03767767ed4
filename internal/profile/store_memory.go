package profile

import (
	"context"
	"sync"

	"gesher/internal/identity"
	id "gesher/pkg/domain"
	"gesher/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in a mutex-guarded map. Used by tests and
// local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.Phone]Profile
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.Phone]Profile)}
}

func (s *InMemoryStore) Get(ctx context.Context, phone id.Phone) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[phone]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := p
	return &clone, nil
}

func (s *InMemoryStore) Save(ctx context.Context, p *Profile, owner identity.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *p
	stored.OwnerUID = owner.UID
	s.profiles[p.Phone] = stored
	return nil
}

func (s *InMemoryStore) IsRegistered(ctx context.Context, phone id.Phone) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[phone]
	return ok, nil
}
