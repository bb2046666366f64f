package verification

import (
	"time"

	"credanchor/internal/credential/models"
)

// Status is the terminal trust outcome of a verification.
type Status string

const (
	StatusVerified      Status = "VERIFIED"
	StatusNotVerified   Status = "NOT_VERIFIED"
	StatusNoAttestation Status = "NO_ATTESTATION"
)

// AttestationSummary is the slice of an attestation a verdict exposes.
type AttestationSummary struct {
	InstitutionName string    `json:"institution"`
	Timestamp       time.Time `json:"timestamp"`
}

// Verdict is the result of one verification call. It is ephemeral: computed
// per call, never persisted.
type Verdict struct {
	Status      Status                   `json:"status"`
	Message     string                   `json:"message"`
	Credential  *models.StoredCredential `json:"credential,omitempty"`
	Attestation *AttestationSummary      `json:"attestation,omitempty"`
	OnChain     bool                     `json:"onChain,omitempty"`
}
