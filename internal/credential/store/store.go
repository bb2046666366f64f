package store

import (
	"context"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "credential not found")

// Store persists credential records together with their write-time hash.
// Records are immutable: saving an already-present credential ID is a no-op,
// never an overwrite.
type Store interface {
	Save(ctx context.Context, credential models.StoredCredential) error
	FindByID(ctx context.Context, id domain.CredentialID) (models.StoredCredential, error)
	FindByOwner(ctx context.Context, id domain.CredentialID, owner domain.DID) (models.StoredCredential, error)
	ListByOwner(ctx context.Context, owner domain.DID) ([]models.StoredCredential, error)
}
