package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"credanchor/internal/attestation"
	"credanchor/pkg/domain"
)

type pairKey struct {
	credential  string
	institution domain.InstitutionKey
}

// InMemoryStore is an in-memory implementation of both AttestationStore and
// RequestStore for tests or local use. One mutex serializes upserts, which
// gives the required last-writer-wins behavior per pair.
type InMemoryStore struct {
	mu           sync.RWMutex
	attestations map[pairKey]attestation.Attestation
	requests     map[string]attestation.VerificationRequest
}

// NewInMemoryStore constructs an empty in-memory attestation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		attestations: make(map[pairKey]attestation.Attestation),
		requests:     make(map[string]attestation.VerificationRequest),
	}
}

func (s *InMemoryStore) Upsert(_ context.Context, att attestation.Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attestations[pairKey{att.CredentialID.String(), att.InstitutionKey}] = att
	return nil
}

// FindByCredential returns the most recent attestation for a credential.
func (s *InMemoryStore) FindByCredential(_ context.Context, id domain.CredentialID) (attestation.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *attestation.Attestation
	for key, att := range s.attestations {
		if key.credential != id.String() {
			continue
		}
		a := att
		if found == nil || a.Timestamp.After(found.Timestamp) {
			found = &a
		}
	}
	if found == nil {
		return attestation.Attestation{}, ErrNotFound
	}
	return *found, nil
}

func (s *InMemoryStore) FindByPair(_ context.Context, id domain.CredentialID, key domain.InstitutionKey) (attestation.Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if att, ok := s.attestations[pairKey{id.String(), key}]; ok {
		return att, nil
	}
	return attestation.Attestation{}, ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, req attestation.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID.String()] = req
	return nil
}

func (s *InMemoryStore) ListPendingByInstitution(_ context.Context, key domain.InstitutionKey) ([]attestation.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []attestation.VerificationRequest
	for _, req := range s.requests {
		if req.InstitutionKey == key && req.Status == attestation.StatusPending {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) ApprovePair(_ context.Context, id domain.CredentialID, key domain.InstitutionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for rid, req := range s.requests {
		if req.CredentialID == id && req.InstitutionKey == key && req.Status == attestation.StatusPending {
			req.Status = attestation.StatusApproved
			req.UpdatedAt = time.Now().UTC()
			s.requests[rid] = req
		}
	}
	return nil
}
