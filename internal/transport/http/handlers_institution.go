package httptransport

import (
	"net/http"

	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/httputil"
)

func (h *Handler) handleInstitutionPending(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseInstitutionKey(r.URL.Query().Get("institutionPubkey"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "institution public key required"))
		return
	}

	requests, err := h.attestations.PendingRequests(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"requests": requests,
	})
}

// AttestRequest records an institution's sign-off on a credential.
type AttestRequest struct {
	InstitutionKey string `json:"institutionPubkey"`
	CredentialID   string `json:"credentialId"`
	Signature      string `json:"signature"`

	parsedKey domain.InstitutionKey
	parsedID  domain.CredentialID
}

// Validate validates and parses the attest request.
func (r *AttestRequest) Validate() error {
	if r.InstitutionKey == "" || r.CredentialID == "" || r.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "institution pubkey, credential ID, and signature required")
	}
	key, err := domain.ParseInstitutionKey(r.InstitutionKey)
	if err != nil {
		return err
	}
	id, err := domain.ParseCredentialID(r.CredentialID)
	if err != nil {
		return err
	}
	r.parsedKey = key
	r.parsedID = id
	return nil
}

func (h *Handler) handleAttest(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndValidate[AttestRequest](w, r, h.logger)
	if !ok {
		return
	}

	att, err := h.attestations.Attest(r.Context(), req.parsedKey, req.parsedID, req.Signature)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "attestation recorded",
		"attestation": att,
	})
}
