package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
)

func storedCredential(owner domain.DID, createdAt time.Time) models.StoredCredential {
	return models.StoredCredential{
		CredentialRecord: models.CredentialRecord{
			ID:       domain.NewCredentialID(),
			OwnerDID: owner,
			Type:     models.TypeEducation,
			Issuer:   "MIT University",
			Title:    "Bachelor of",
		},
		Hash:      "hash-original",
		CreatedAt: createdAt,
	}
}

func TestSaveLeavesExistingRecordsUntouched(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	cred := storedCredential("did:anchor:wallet123", time.Now().UTC())

	require.NoError(t, s.Save(ctx, cred))

	overwrite := cred
	overwrite.Issuer = "Diploma Mill"
	overwrite.Hash = "hash-forged"
	require.NoError(t, s.Save(ctx, overwrite), "re-saving an existing ID is a silent no-op")

	got, err := s.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "MIT University", got.Issuer)
	assert.Equal(t, "hash-original", got.Hash)
}

func TestFindByOwnerScopesToOwner(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	cred := storedCredential("did:anchor:wallet123", time.Now().UTC())
	require.NoError(t, s.Save(ctx, cred))

	_, err := s.FindByOwner(ctx, cred.ID, "did:anchor:wallet123")
	require.NoError(t, err)

	_, err = s.FindByOwner(ctx, cred.ID, "did:anchor:other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByOwnerReturnsNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	owner := domain.DID("did:anchor:wallet123")
	now := time.Now().UTC()

	older := storedCredential(owner, now.Add(-time.Hour))
	newer := storedCredential(owner, now)
	other := storedCredential("did:anchor:other", now)
	for _, c := range []models.StoredCredential{older, newer, other} {
		require.NoError(t, s.Save(ctx, c))
	}

	got, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}
