package service

import (
	"context"
	"log/slog"
	"time"

	"credanchor/internal/attestation"
	"credanchor/internal/attestation/store"
	"credanchor/internal/audit"
	credstore "credanchor/internal/credential/store"
	"credanchor/internal/institution"
	"credanchor/internal/platform/metrics"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// Option configures the Service.
type Option func(*Service)

// WithAuditor configures an audit publisher for the service.
func WithAuditor(auditor audit.Publisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service is the attestation writer: the authority-gated mutation that
// records an institution's sign-off on a credential.
type Service struct {
	attestations store.AttestationStore
	requests     store.RequestStore
	credentials  credstore.Store
	trust        institution.Store
	auditor      audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New creates an attestation service. Stores and the trust registry are
// required; fail fast at startup.
func New(attestations store.AttestationStore, requests store.RequestStore, credentials credstore.Store, trust institution.Store, opts ...Option) *Service {
	if attestations == nil || requests == nil || credentials == nil || trust == nil {
		panic("attestation service: all stores are required")
	}
	s := &Service{
		attestations: attestations,
		requests:     requests,
		credentials:  credentials,
		trust:        trust,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attest records an institution's sign-off on a credential. Preconditions in
// order: the institution must be whitelisted (forbidden otherwise), the
// credential must exist (not found otherwise). The write is an idempotent
// upsert: re-attesting replaces the prior signature and timestamp. Pending
// verification requests for the pair transition to approved.
func (s *Service) Attest(ctx context.Context, key domain.InstitutionKey, credentialID domain.CredentialID, signature string) (attestation.Attestation, error) {
	if key.IsNil() {
		return attestation.Attestation{}, dErrors.New(dErrors.CodeInvalidInput, "institution key is required")
	}
	if credentialID.IsNil() {
		return attestation.Attestation{}, dErrors.New(dErrors.CodeInvalidInput, "credential ID is required")
	}
	if signature == "" {
		return attestation.Attestation{}, dErrors.New(dErrors.CodeInvalidInput, "signature is required")
	}

	whitelisted, err := institution.IsWhitelisted(ctx, s.trust, key)
	if err != nil {
		return attestation.Attestation{}, dErrors.Wrap(err, dErrors.CodeInternal, "check institution whitelist")
	}
	if !whitelisted {
		s.rejected("not_whitelisted")
		s.emitAudit(ctx, audit.Event{
			Timestamp:      time.Now().UTC(),
			Action:         audit.ActionAttestationDenied,
			CredentialID:   credentialID,
			InstitutionKey: key,
			Reason:         "institution not whitelisted",
		})
		return attestation.Attestation{}, dErrors.New(dErrors.CodeForbidden, "institution not authorized")
	}

	cred, err := s.credentials.FindByID(ctx, credentialID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.rejected("credential_not_found")
			return attestation.Attestation{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return attestation.Attestation{}, dErrors.Wrap(err, dErrors.CodeInternal, "load credential")
	}

	att := attestation.Attestation{
		CredentialID:   credentialID,
		CredentialHash: cred.Hash,
		InstitutionKey: key,
		Signature:      signature,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.attestations.Upsert(ctx, att); err != nil {
		return attestation.Attestation{}, dErrors.Wrap(err, dErrors.CodeInternal, "store attestation")
	}

	// Approval is an observable side effect of attesting, not a separate call
	// the institution makes. A failure here is logged, not surfaced: the
	// attestation itself is already durable.
	if err := s.requests.ApprovePair(ctx, credentialID, key); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to approve verification requests",
			"error", err,
			"credential_id", credentialID.String(),
			"institution", key.String(),
		)
	}

	if s.metrics != nil {
		s.metrics.AttestationsWritten.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:      att.Timestamp,
		Action:         audit.ActionAttestationWritten,
		CredentialID:   credentialID,
		InstitutionKey: key,
	})
	return att, nil
}

// RequestVerification creates a pending verification request asking an
// institution to attest a credential. The credential must exist and belong to
// the requesting owner.
func (s *Service) RequestVerification(ctx context.Context, owner domain.DID, credentialID domain.CredentialID, key domain.InstitutionKey) (attestation.VerificationRequest, error) {
	if owner.IsNil() {
		return attestation.VerificationRequest{}, dErrors.New(dErrors.CodeUnauthorized, "owner DID is required")
	}
	if key.IsNil() {
		return attestation.VerificationRequest{}, dErrors.New(dErrors.CodeInvalidInput, "institution key is required")
	}

	if _, err := s.credentials.FindByOwner(ctx, credentialID, owner); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return attestation.VerificationRequest{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return attestation.VerificationRequest{}, dErrors.Wrap(err, dErrors.CodeInternal, "load credential")
	}

	now := time.Now().UTC()
	req := attestation.VerificationRequest{
		ID:             domain.NewRequestID(),
		CredentialID:   credentialID,
		InstitutionKey: key,
		Status:         attestation.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return attestation.VerificationRequest{}, dErrors.Wrap(err, dErrors.CodeInternal, "create verification request")
	}
	return req, nil
}

// PendingRequests lists an institution's pending verification requests joined
// with credential snapshots. Only whitelisted institutions may read them.
func (s *Service) PendingRequests(ctx context.Context, key domain.InstitutionKey) ([]attestation.PendingRequest, error) {
	whitelisted, err := institution.IsWhitelisted(ctx, s.trust, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "check institution whitelist")
	}
	if !whitelisted {
		return nil, dErrors.New(dErrors.CodeForbidden, "institution not authorized")
	}

	requests, err := s.requests.ListPendingByInstitution(ctx, key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending requests")
	}

	out := make([]attestation.PendingRequest, 0, len(requests))
	for _, req := range requests {
		cred, err := s.credentials.FindByID(ctx, req.CredentialID)
		if err != nil {
			// A request whose credential vanished under retention policy is
			// skipped rather than failing the whole listing.
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load credential")
		}
		out = append(out, attestation.PendingRequest{Request: req, Credential: cred})
	}
	return out, nil
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.AttestationsRejected.WithLabelValues(reason).Inc()
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
