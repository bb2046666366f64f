package httptransport

import (
	"net/http"

	"credanchor/internal/platform/middleware"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/httputil"
)

// VerifyRequest asks for a trust verdict on one credential.
type VerifyRequest struct {
	CredentialID string `json:"credentialId"`
	OwnerDID     string `json:"ownerDid"`

	parsedID    domain.CredentialID
	parsedOwner domain.DID
}

// Validate validates and parses the verify request.
func (r *VerifyRequest) Validate() error {
	if r.CredentialID == "" || r.OwnerDID == "" {
		return dErrors.New(dErrors.CodeValidation, "credential ID and owner DID required")
	}
	id, err := domain.ParseCredentialID(r.CredentialID)
	if err != nil {
		return err
	}
	owner, err := domain.ParseDID(r.OwnerDID)
	if err != nil {
		return err
	}
	r.parsedID = id
	r.parsedOwner = owner
	return nil
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndValidate[VerifyRequest](w, r, h.logger)
	if !ok {
		return
	}

	verdict, err := h.verifier.Verify(r.Context(), req.parsedID, req.parsedOwner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verdict)
}

// VerificationRequestRequest asks an institution to attest a credential.
type VerificationRequestRequest struct {
	CredentialID   string `json:"credentialId"`
	InstitutionKey string `json:"institutionPubkey"`

	parsedID  domain.CredentialID
	parsedKey domain.InstitutionKey
}

// Validate validates and parses the request.
func (r *VerificationRequestRequest) Validate() error {
	id, err := domain.ParseCredentialID(r.CredentialID)
	if err != nil {
		return err
	}
	key, err := domain.ParseInstitutionKey(r.InstitutionKey)
	if err != nil {
		return err
	}
	r.parsedID = id
	r.parsedKey = key
	return nil
}

func (h *Handler) handleVerificationRequest(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetDID(r.Context())

	req, ok := httputil.DecodeAndValidate[VerificationRequestRequest](w, r, h.logger)
	if !ok {
		return
	}

	created, err := h.attestations.RequestVerification(r.Context(), owner, req.parsedID, req.parsedKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"request": created,
	})
}
