package store

import (
	"context"
	"sort"
	"sync"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]models.StoredCredential
}

// NewInMemoryStore constructs an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{credentials: make(map[string]models.StoredCredential)}
}

// Save stores a credential record. An existing ID is left untouched so stored
// records stay immutable.
func (s *InMemoryStore) Save(_ context.Context, credential models.StoredCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := credential.ID.String()
	if _, exists := s.credentials[key]; exists {
		return nil
	}
	s.credentials[key] = credential
	return nil
}

// FindByID retrieves a credential record by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id domain.CredentialID) (models.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.credentials[id.String()]; ok {
		return cred, nil
	}
	return models.StoredCredential{}, ErrNotFound
}

// FindByOwner retrieves a credential by ID scoped to its owner DID.
func (s *InMemoryStore) FindByOwner(_ context.Context, id domain.CredentialID, owner domain.DID) (models.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[id.String()]
	if !ok || cred.OwnerDID != owner {
		return models.StoredCredential{}, ErrNotFound
	}
	return cred, nil
}

// ListByOwner returns all credentials for an owner, newest first.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner domain.DID) ([]models.StoredCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.StoredCredential
	for _, cred := range s.credentials {
		if cred.OwnerDID == owner {
			out = append(out, cred)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Corrupt replaces the stored hash for a credential. Test hook for exercising
// the integrity check; not part of the Store interface.
func (s *InMemoryStore) Corrupt(id domain.CredentialID, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.credentials[id.String()]; ok {
		cred.Hash = hash
		s.credentials[id.String()] = cred
	}
}
