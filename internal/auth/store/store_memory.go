package store

import (
	"context"
	"sync"
	"time"
)

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

// InMemoryNonceStore is a nonce store for tests and single-process runs.
type InMemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]nonceEntry
}

var _ NonceStore = (*InMemoryNonceStore)(nil)

// NewInMemoryNonceStore constructs an empty in-memory nonce store.
func NewInMemoryNonceStore() *InMemoryNonceStore {
	return &InMemoryNonceStore{nonces: make(map[string]nonceEntry)}
}

func (s *InMemoryNonceStore) Put(_ context.Context, wallet, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[wallet] = nonceEntry{nonce: nonce, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryNonceStore) Consume(_ context.Context, wallet string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.nonces[wallet]
	if !ok {
		return "", ErrNoChallenge
	}
	delete(s.nonces, wallet)
	if time.Now().After(entry.expiresAt) {
		return "", ErrNoChallenge
	}
	return entry.nonce, nil
}
