package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credanchor/internal/attestation/service"
	"credanchor/internal/auth"
	credservice "credanchor/internal/credential/service"
	"credanchor/internal/platform/health"
	"credanchor/internal/platform/middleware"
	"credanchor/internal/verification"
)

// Handler is the thin HTTP layer. It delegates to domain services without
// embedding business logic so transport concerns remain isolated.
type Handler struct {
	credentials  *credservice.Service
	verifier     *verification.Service
	attestations *service.Service
	auth         *auth.Service
	tokens       *auth.TokenService
	logger       *slog.Logger
}

// NewHandler wires the HTTP layer to its domain services.
func NewHandler(
	credentials *credservice.Service,
	verifier *verification.Service,
	attestations *service.Service,
	authService *auth.Service,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		credentials:  credentials,
		verifier:     verifier,
		attestations: attestations,
		auth:         authService,
		tokens:       tokens,
		logger:       logger,
	}
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(h *Handler, probes *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	probes.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	// Wallet auth
	r.Post("/api/auth/challenge", h.handleAuthChallenge)
	r.Post("/api/auth/login", h.handleAuthLogin)

	// Owner endpoints: caller DID comes from the session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens, logger))
		r.Post("/api/resume/upload", h.handleResumeUpload)
		r.Post("/api/resume/publish", h.handleResumePublish)
		r.Get("/api/credentials", h.handleCredentialsList)
		r.Post("/api/verification/request", h.handleVerificationRequest)
	})

	// Public reads and institution endpoints: institutions authenticate by
	// key and are gated against the trust registry in the service layer.
	r.Get("/api/credentials/{id}", h.handleCredentialGet)
	r.Post("/api/verification/verify", h.handleVerify)
	r.Get("/api/institution/pending", h.handleInstitutionPending)
	r.Post("/api/institution/attest", h.handleAttest)

	return r
}
