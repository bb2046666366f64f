package models

import (
	"time"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// CredentialType classifies a credential record by the resume section it
// was extracted from.
type CredentialType string

const (
	TypeEducation     CredentialType = "education"
	TypeWork          CredentialType = "work"
	TypeProject       CredentialType = "project"
	TypeCertification CredentialType = "certification"
)

// ParseCredentialType validates a credential type string at trust boundaries.
func ParseCredentialType(s string) (CredentialType, error) {
	switch CredentialType(s) {
	case TypeEducation, TypeWork, TypeProject, TypeCertification:
		return CredentialType(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown credential type: "+s)
	}
}

// Attributes is the open map of additional credential fields. Values must be
// JSON primitives (string, number, bool) so canonical hashing can enumerate
// and sort every field deterministically.
type Attributes map[string]any

// CredentialRecord is a single structured fact extracted from a document.
// Records are immutable once persisted; re-extraction generates fresh IDs and
// never mutates an existing record.
type CredentialRecord struct {
	ID         domain.CredentialID `json:"credential_id"`
	OwnerDID   domain.DID          `json:"owner_did"`
	Type       CredentialType      `json:"type"`
	Issuer     string              `json:"issuer"`
	Title      string              `json:"title"`
	StartDate  string              `json:"start_date,omitempty"`
	EndDate    string              `json:"end_date,omitempty"`
	Attributes Attributes          `json:"attributes,omitempty"`
}

// StoredCredential is a CredentialRecord with the digest computed at write
// time. The hash must always equal the canonical hash of the record; a
// divergence means the stored record was tampered with.
type StoredCredential struct {
	CredentialRecord
	Hash      string    `json:"credential_hash"`
	CreatedAt time.Time `json:"created_at"`
}
