package store

import (
	"context"

	"credanchor/internal/attestation"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "attestation not found")

// AttestationStore persists attestations. Upsert must serialize concurrent
// writes to the same (credential, institution) pair with last-writer-wins
// semantics; attestations are idempotent per institution, so no merge logic.
type AttestationStore interface {
	Upsert(ctx context.Context, att attestation.Attestation) error
	FindByCredential(ctx context.Context, id domain.CredentialID) (attestation.Attestation, error)
	FindByPair(ctx context.Context, id domain.CredentialID, key domain.InstitutionKey) (attestation.Attestation, error)
}

// RequestStore persists verification requests.
type RequestStore interface {
	Create(ctx context.Context, req attestation.VerificationRequest) error
	ListPendingByInstitution(ctx context.Context, key domain.InstitutionKey) ([]attestation.VerificationRequest, error)
	// ApprovePair transitions every pending request for the pair to approved.
	ApprovePair(ctx context.Context, id domain.CredentialID, key domain.InstitutionKey) error
}
