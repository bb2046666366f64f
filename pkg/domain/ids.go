// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "credanchor/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a CredentialID where a
// RequestID is expected.
type (
	CredentialID uuid.UUID
	RequestID    uuid.UUID
)

// InstitutionKey is the public key string identifying an attesting institution.
type InstitutionKey string

// DID is a decentralized identifier handle, e.g. "did:anchor:6fJk...".
type DID string

// NewCredentialID generates a fresh credential identifier.
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }

// NewRequestID generates a fresh verification request identifier.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseCredentialID(s string) (CredentialID, error) {
	id, err := parseUUID(s, "credential ID")
	return CredentialID(id), err
}

func ParseRequestID(s string) (RequestID, error) {
	id, err := parseUUID(s, "request ID")
	return RequestID(id), err
}

func ParseInstitutionKey(s string) (InstitutionKey, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "institution key cannot be empty")
	}
	return InstitutionKey(s), nil
}

func ParseDID(s string) (DID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "DID cannot be empty")
	}
	if !strings.HasPrefix(s, "did:") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid DID format")
	}
	return DID(s), nil
}

// String methods - for logging and debugging.

func (id CredentialID) String() string   { return uuid.UUID(id).String() }
func (id RequestID) String() string      { return uuid.UUID(id).String() }
func (k InstitutionKey) String() string  { return string(k) }
func (d DID) String() string             { return string(d) }

// Text marshaling - IDs cross the wire as canonical UUID strings.

func (id CredentialID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RequestID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *CredentialID) UnmarshalText(b []byte) error {
	parsed, err := ParseCredentialID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsNil checks - used for service-layer validation.

func (id CredentialID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (k InstitutionKey) IsNil() bool { return k == "" }
func (d DID) IsNil() bool            { return d == "" }

// parseUUID is the shared validation logic. Nil UUIDs are allowed here; use
// IsNil() at the service layer so store lookups can return proper "not found"
// errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
