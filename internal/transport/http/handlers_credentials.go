package httptransport

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	credservice "credanchor/internal/credential/service"
	"credanchor/internal/platform/middleware"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
	"credanchor/pkg/platform/httputil"
)

// maxUploadBytes caps resume uploads; resumes are text documents, not archives.
const maxUploadBytes = 5 << 20

func (h *Handler) handleResumeUpload(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetDID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart form required"))
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "resume file required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "read upload"))
		return
	}

	stored, err := h.credentials.Ingest(r.Context(), credservice.Document{
		Data:     data,
		Format:   filepath.Ext(header.Filename),
		OwnerDID: owner,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"credentials": stored,
		"count":       len(stored),
	})
}

// PublishRequest asks for commitment payloads for client-side signing.
type PublishRequest struct {
	CredentialIDs []string `json:"credentialIds"`

	parsedIDs []domain.CredentialID
}

// Validate validates and parses the publish request.
func (r *PublishRequest) Validate() error {
	if len(r.CredentialIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "credential IDs required")
	}
	r.parsedIDs = make([]domain.CredentialID, 0, len(r.CredentialIDs))
	for _, raw := range r.CredentialIDs {
		id, err := domain.ParseCredentialID(raw)
		if err != nil {
			return err
		}
		r.parsedIDs = append(r.parsedIDs, id)
	}
	return nil
}

func (h *Handler) handleResumePublish(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetDID(r.Context())

	req, ok := httputil.DecodeAndValidate[PublishRequest](w, r, h.logger)
	if !ok {
		return
	}

	commitments, err := h.credentials.PublishPayloads(r.Context(), owner, req.parsedIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"commitments": commitments,
		"message":     "publish these commitments using a wallet-signed ledger transaction",
	})
}

func (h *Handler) handleCredentialsList(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetDID(r.Context())

	credentials, err := h.credentials.List(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"credentials": credentials,
	})
}

func (h *Handler) handleCredentialGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	credential, err := h.credentials.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"credential": credential,
	})
}
