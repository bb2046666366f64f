package institution

import (
	"context"
	"sync"

	"credanchor/pkg/domain"
)

// InMemoryStore is an in-memory trust registry for tests or local use.
type InMemoryStore struct {
	mu           sync.RWMutex
	institutions map[domain.InstitutionKey]Institution
}

// NewInMemoryStore constructs an empty in-memory trust registry.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{institutions: make(map[domain.InstitutionKey]Institution)}
}

func (s *InMemoryStore) Lookup(_ context.Context, key domain.InstitutionKey) (Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if inst, ok := s.institutions[key]; ok {
		return inst, nil
	}
	return Institution{}, ErrNotFound
}

func (s *InMemoryStore) Save(_ context.Context, inst Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.institutions[inst.Key] = inst
	return nil
}
