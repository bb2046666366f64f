package audit

import (
	"time"

	"credanchor/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time             `json:"timestamp"`
	Action         Action                `json:"action"`
	CredentialID   domain.CredentialID   `json:"credential_id"`
	OwnerDID       domain.DID            `json:"owner_did,omitempty"`
	InstitutionKey domain.InstitutionKey `json:"institution_key,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	RequestID      string                `json:"request_id,omitempty"`
}

// Action names an auditable credential lifecycle action.
type Action string

const (
	ActionIntegrityMismatch  Action = "credential_integrity_mismatch"
	ActionAttestationWritten Action = "attestation_written"
	ActionAttestationDenied  Action = "attestation_denied"
	ActionCredentialStored   Action = "credential_stored"
)
