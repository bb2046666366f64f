package httptransport

import (
	"net/http"

	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/httputil"
)

// ChallengeRequest asks for a login nonce for a wallet.
type ChallengeRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// Validate checks required fields.
func (r *ChallengeRequest) Validate() error {
	if r.WalletAddress == "" {
		return dErrors.New(dErrors.CodeValidation, "wallet address required")
	}
	return nil
}

func (h *Handler) handleAuthChallenge(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndValidate[ChallengeRequest](w, r, h.logger)
	if !ok {
		return
	}

	challenge, err := h.auth.Challenge(r.Context(), req.WalletAddress)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, challenge)
}

// LoginRequest redeems a signed challenge for a session token.
type LoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Nonce         string `json:"nonce"`
	Signature     string `json:"signature"`
}

// Validate checks required fields.
func (r *LoginRequest) Validate() error {
	if r.WalletAddress == "" || r.Nonce == "" || r.Signature == "" {
		return dErrors.New(dErrors.CodeValidation, "wallet address, nonce, and signature required")
	}
	return nil
}

func (h *Handler) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndValidate[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.auth.Login(r.Context(), req.WalletAddress, req.Nonce, req.Signature)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   session.Token,
		"did":     session.DID.String(),
	})
}
