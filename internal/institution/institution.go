// Package institution holds the trust registry: the authoritative set of
// institution keys permitted to issue attestations.
package institution

import (
	"context"
	"time"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "institution not found")

// Institution is a known attesting authority.
type Institution struct {
	Key         domain.InstitutionKey `json:"pubkey"`
	Name        string                `json:"name"`
	Whitelisted bool                  `json:"is_whitelisted"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Store is the trust registry lookup capability injected into the verifier
// and the attestation writer. Verdict readers only need Lookup; write access
// to the registry is an operator concern outside this service.
type Store interface {
	Lookup(ctx context.Context, key domain.InstitutionKey) (Institution, error)
	Save(ctx context.Context, inst Institution) error
}

// IsWhitelisted reports whether key belongs to a whitelisted institution.
// An unknown institution is simply not whitelisted, not an error.
func IsWhitelisted(ctx context.Context, store Store, key domain.InstitutionKey) (bool, error) {
	inst, err := store.Lookup(ctx, key)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return inst.Whitelisted, nil
}
