package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"credanchor/internal/audit"
	"credanchor/internal/credential/canonical"
	"credanchor/internal/credential/extract"
	"credanchor/internal/credential/models"
	"credanchor/internal/credential/store"
	"credanchor/internal/ledger"
	"credanchor/internal/platform/metrics"
	"credanchor/pkg/domain"
	dErrors "credanchor/pkg/domain-errors"
)

// ingestConcurrency bounds parallel document extraction in IngestAll.
// Extraction is pure, so documents only contend on the store.
const ingestConcurrency = 4

// Document is one uploaded document to ingest.
type Document struct {
	Data     []byte
	Format   string
	OwnerDID domain.DID
}

// Commitment is the publish payload for one credential: everything an
// external signer needs to anchor the commitment on the ledger. This service
// never constructs or signs ledger transactions.
type Commitment struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	OwnerDID     domain.DID          `json:"owner_did"`
	Hash         string              `json:"credential_hash"`
	Address      ledger.Address      `json:"commitment_address"`
}

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

// Service runs the ingestion pipeline: document text -> extraction ->
// canonical hash -> store. It also serves credential reads and prepares
// publish payloads.
type Service struct {
	store   store.Store
	auditor audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a credential service. The store is required.
func New(credStore store.Store, opts ...Option) *Service {
	if credStore == nil {
		panic("credential service: store is required")
	}
	s := &Service{store: credStore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest extracts credentials from one document and persists each with its
// canonical hash. Heuristic misses shrink the result, they never error; only
// unusable input (bad format, missing owner) is rejected.
func (s *Service) Ingest(ctx context.Context, doc Document) ([]models.StoredCredential, error) {
	if doc.OwnerDID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner DID is required")
	}
	if len(doc.Data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document is required")
	}

	start := time.Now()
	text, err := extract.Text(doc.Data, doc.Format)
	if err != nil {
		return nil, err
	}

	records := extract.Credentials(text, doc.OwnerDID)

	stored := make([]models.StoredCredential, 0, len(records))
	for _, record := range records {
		hash, err := canonical.Hash(record)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash credential")
		}
		cred := models.StoredCredential{
			CredentialRecord: record,
			Hash:             hash,
			CreatedAt:        time.Now().UTC(),
		}
		if err := s.store.Save(ctx, cred); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save credential")
		}
		stored = append(stored, cred)
		s.emitAudit(ctx, audit.Event{
			Timestamp:    cred.CreatedAt,
			Action:       audit.ActionCredentialStored,
			CredentialID: cred.ID,
			OwnerDID:     cred.OwnerDID,
		})
	}

	if s.metrics != nil {
		s.metrics.ObserveExtraction(len(stored), time.Since(start))
		s.metrics.CredentialsStored.Add(float64(len(stored)))
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "document ingested",
			"owner_did", doc.OwnerDID.String(),
			"records", len(stored),
		)
	}
	return stored, nil
}

// IngestAll ingests several documents concurrently. Extraction and hashing
// are pure, so documents are independent; the first failure cancels the rest.
func (s *Service) IngestAll(ctx context.Context, docs []Document) ([][]models.StoredCredential, error) {
	results := make([][]models.StoredCredential, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			stored, err := s.Ingest(gctx, doc)
			if err != nil {
				return err
			}
			results[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// List returns all credentials for an owner, newest first.
func (s *Service) List(ctx context.Context, owner domain.DID) ([]models.StoredCredential, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner DID is required")
	}
	return s.store.ListByOwner(ctx, owner)
}

// Get returns one credential by ID.
func (s *Service) Get(ctx context.Context, id domain.CredentialID) (models.StoredCredential, error) {
	return s.store.FindByID(ctx, id)
}

// PublishPayloads builds the commitment payloads for the given credentials so
// an external wallet can sign and submit the anchoring transaction. Every
// requested ID must exist and belong to the owner.
func (s *Service) PublishPayloads(ctx context.Context, owner domain.DID, ids []domain.CredentialID) ([]Commitment, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner DID is required")
	}
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential IDs are required")
	}

	commitments := make([]Commitment, 0, len(ids))
	for _, id := range ids {
		cred, err := s.store.FindByOwner(ctx, id, owner)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "some credentials not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load credential")
		}
		commitments = append(commitments, Commitment{
			CredentialID: cred.ID,
			OwnerDID:     cred.OwnerDID,
			Hash:         cred.Hash,
			Address:      ledger.DeriveCommitmentAddress(cred.ID),
		})
	}
	return commitments, nil
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
