// Package verification turns store, ledger, and trust registry lookups into a
// single trust verdict.
package verification

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	attstore "credanchor/internal/attestation/store"
	"credanchor/internal/audit"
	"credanchor/internal/credential/canonical"
	credstore "credanchor/internal/credential/store"
	"credanchor/internal/institution"
	"credanchor/internal/ledger"
	"credanchor/internal/platform/metrics"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

const tracerName = "credanchor/verification"

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

// Service is the verifier. Each Verify call walks a strictly linear state
// machine - lookup, integrity, commitment, attestation, trust - with no
// backward edges and no state kept between calls.
type Service struct {
	credentials  credstore.Store
	attestations attstore.AttestationStore
	ledger       ledger.Client
	trust        institution.Store
	auditor      audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
}

// New creates a verifier with its required collaborators.
func New(credentials credstore.Store, attestations attstore.AttestationStore, ledgerClient ledger.Client, trust institution.Store, opts ...Option) *Service {
	if credentials == nil || attestations == nil || ledgerClient == nil || trust == nil {
		panic("verification service: all collaborators are required")
	}
	s := &Service{
		credentials:  credentials,
		attestations: attestations,
		ledger:       ledgerClient,
		trust:        trust,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify checks a credential against the store, the ledger, and the trust
// registry and returns a verdict. Missing data is a verdict, not an error; a
// ledger failure at the commitment step degrades to NO_ATTESTATION so the
// caller always gets a usable outcome. The returned error is reserved for
// invalid input and store faults.
func (s *Service) Verify(ctx context.Context, credentialID domain.CredentialID, owner domain.DID) (Verdict, error) {
	if credentialID.IsNil() {
		return Verdict{}, dErrors.New(dErrors.CodeInvalidInput, "credential ID is required")
	}
	if owner.IsNil() {
		return Verdict{}, dErrors.New(dErrors.CodeInvalidInput, "owner DID is required")
	}

	ctx, span := s.tracer.Start(ctx, "verification.verify",
		trace.WithAttributes(attribute.String("credential.id", credentialID.String())))
	defer span.End()

	verdict, err := s.verify(ctx, credentialID, owner)
	if err != nil {
		return Verdict{}, err
	}

	span.SetAttributes(attribute.String("verification.status", string(verdict.Status)))
	if s.metrics != nil {
		s.metrics.IncrementVerdict(string(verdict.Status))
	}
	return verdict, nil
}

func (s *Service) verify(ctx context.Context, credentialID domain.CredentialID, owner domain.DID) (Verdict, error) {
	// Lookup
	cred, err := s.credentials.FindByOwner(ctx, credentialID, owner)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Verdict{
				Status:  StatusNotVerified,
				Message: "credential not found",
			}, nil
		}
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "load credential")
	}

	// Integrity
	computed, err := canonical.Hash(cred.CredentialRecord)
	if err != nil {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash credential")
	}
	if computed != cred.Hash {
		s.auditIntegrityMismatch(ctx, cred.ID, owner)
		return Verdict{
			Status:  StatusNotVerified,
			Message: "credential hash mismatch - possible tampering",
		}, nil
	}

	// Commitment. A ledger fault here degrades rather than failing: a usable
	// verdict beats surfacing a transient infrastructure error.
	addr := ledger.DeriveCommitmentAddress(credentialID)
	onChain, err := s.ledger.HasCommitment(ctx, addr)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LedgerErrors.Inc()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "ledger lookup failed, degrading verdict",
				"error", err,
				"credential_id", credentialID.String(),
			)
		}
		return Verdict{
			Status:     StatusNoAttestation,
			Message:    "could not fetch on-chain data",
			Credential: &cred,
		}, nil
	}
	if !onChain {
		return Verdict{
			Status:     StatusNoAttestation,
			Message:    "credential commitment not found on-chain",
			Credential: &cred,
		}, nil
	}

	// Attestation
	att, err := s.attestations.FindByCredential(ctx, credentialID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Verdict{
				Status:     StatusNoAttestation,
				Message:    "credential exists on-chain but has no institutional attestation",
				Credential: &cred,
				OnChain:    true,
			}, nil
		}
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "load attestation")
	}

	// Trust
	inst, err := s.trust.Lookup(ctx, att.InstitutionKey)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return Verdict{}, dErrors.Wrap(err, dErrors.CodeInternal, "lookup institution")
	}
	if err != nil || !inst.Whitelisted {
		return Verdict{
			Status:  StatusNotVerified,
			Message: "attestation from non-whitelisted institution",
		}, nil
	}

	return Verdict{
		Status:     StatusVerified,
		Message:    "credential verified with institutional attestation",
		Credential: &cred,
		Attestation: &AttestationSummary{
			InstitutionName: inst.Name,
			Timestamp:       att.Timestamp,
		},
	}, nil
}

// auditIntegrityMismatch records a tamper detection. This is audited
// unconditionally; integrity failures must never be silently downgraded.
func (s *Service) auditIntegrityMismatch(ctx context.Context, id domain.CredentialID, owner domain.DID) {
	if s.metrics != nil {
		s.metrics.IntegrityFailures.Inc()
	}
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "stored hash mismatch detected",
			"credential_id", id.String(),
			"owner_did", owner.String(),
		)
	}
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:    time.Now().UTC(),
		Action:       audit.ActionIntegrityMismatch,
		CredentialID: id,
		OwnerDID:     owner,
		Reason:       "stored hash does not match canonical hash",
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
