package attestation

import (
	"time"

	credmodels "credanchor/internal/credential/models"
	"credanchor/pkg/domain"
)

// Attestation is an institution's signed confirmation that a credential is
// valid. There is at most one per (credential, institution) pair; a repeated
// attest call replaces the signature and timestamp, it never duplicates.
type Attestation struct {
	CredentialID   domain.CredentialID   `json:"credential_id"`
	CredentialHash string                `json:"credential_hash"`
	InstitutionKey domain.InstitutionKey `json:"institution_pubkey"`
	Signature      string                `json:"signature"`
	Timestamp      time.Time             `json:"timestamp"`
}

// RequestStatus is the lifecycle state of a verification request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
)

// VerificationRequest is an owner's ask for an institution to attest one of
// their credentials. Attesting approves every pending request for the pair.
type VerificationRequest struct {
	ID             domain.RequestID      `json:"id"`
	CredentialID   domain.CredentialID   `json:"credential_id"`
	InstitutionKey domain.InstitutionKey `json:"institution_pubkey"`
	Status         RequestStatus         `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// PendingRequest is a verification request joined with its credential
// snapshot, as shown to the attesting institution.
type PendingRequest struct {
	Request    VerificationRequest         `json:"request"`
	Credential credmodels.StoredCredential `json:"credential"`
}
