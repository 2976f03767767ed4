package legacy

import (
	"context"
	"sync"

	id "gesher/pkg/domain"
)

// InMemoryStore holds legacy records in memory. Tests seed it directly the
// way admin tooling seeds the real store.
type InMemoryStore struct {
	mu      sync.RWMutex
	secrets map[id.Phone]string
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{secrets: make(map[id.Phone]string)}
}

// Seed installs a record as provisioning tooling would. The secret may be a
// plaintext password or an argon2id hash.
func (s *InMemoryStore) Seed(phone id.Phone, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[phone] = secret
}

func (s *InMemoryStore) Verify(ctx context.Context, phone id.Phone, password string) (bool, error) {
	s.mu.RLock()
	stored, ok := s.secrets[phone]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return matchSecret(stored, password)
}
