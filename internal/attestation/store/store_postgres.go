package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"credanchor/internal/attestation"
	"credanchor/pkg/domain"
)

// PostgresStore persists attestations and verification requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attestation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert relies on the (credential_id, institution_pubkey) unique constraint
// for last-writer-wins serialization of concurrent attests on one pair.
func (s *PostgresStore) Upsert(ctx context.Context, att attestation.Attestation) error {
	query := `
		INSERT INTO attestations (credential_id, credential_hash, institution_pubkey, signature, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (credential_id, institution_pubkey) DO UPDATE SET
			signature = EXCLUDED.signature,
			timestamp = EXCLUDED.timestamp
	`
	_, err := s.db.ExecContext(ctx, query,
		att.CredentialID.String(),
		att.CredentialHash,
		att.InstitutionKey.String(),
		att.Signature,
		att.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert attestation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCredential(ctx context.Context, id domain.CredentialID) (attestation.Attestation, error) {
	query := `
		SELECT credential_id, credential_hash, institution_pubkey, signature, timestamp
		FROM attestations
		WHERE credential_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id.String()))
}

func (s *PostgresStore) FindByPair(ctx context.Context, id domain.CredentialID, key domain.InstitutionKey) (attestation.Attestation, error) {
	query := `
		SELECT credential_id, credential_hash, institution_pubkey, signature, timestamp
		FROM attestations
		WHERE credential_id = $1 AND institution_pubkey = $2
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id.String(), key.String()))
}

func (s *PostgresStore) Create(ctx context.Context, req attestation.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (id, credential_id, institution_pubkey, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		req.ID.String(),
		req.CredentialID.String(),
		req.InstitutionKey.String(),
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create verification request: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPendingByInstitution(ctx context.Context, key domain.InstitutionKey) ([]attestation.VerificationRequest, error) {
	query := `
		SELECT id, credential_id, institution_pubkey, status, created_at, updated_at
		FROM verification_requests
		WHERE institution_pubkey = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, key.String())
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var out []attestation.VerificationRequest
	for rows.Next() {
		var req attestation.VerificationRequest
		var idStr, credStr, keyStr, statusStr string
		if err := rows.Scan(&idStr, &credStr, &keyStr, &statusStr, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		reqID, err := domain.ParseRequestID(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse request id: %w", err)
		}
		credID, err := domain.ParseCredentialID(credStr)
		if err != nil {
			return nil, fmt.Errorf("parse request credential id: %w", err)
		}
		req.ID = reqID
		req.CredentialID = credID
		req.InstitutionKey = domain.InstitutionKey(keyStr)
		req.Status = attestation.RequestStatus(statusStr)
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ApprovePair(ctx context.Context, id domain.CredentialID, key domain.InstitutionKey) error {
	query := `
		UPDATE verification_requests
		SET status = 'approved', updated_at = NOW()
		WHERE credential_id = $1 AND institution_pubkey = $2 AND status = 'pending'
	`
	_, err := s.db.ExecContext(ctx, query, id.String(), key.String())
	if err != nil {
		return fmt.Errorf("approve verification requests: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (attestation.Attestation, error) {
	var att attestation.Attestation
	var credStr, keyStr string
	err := row.Scan(&credStr, &att.CredentialHash, &keyStr, &att.Signature, &att.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attestation.Attestation{}, ErrNotFound
		}
		return attestation.Attestation{}, fmt.Errorf("find attestation: %w", err)
	}
	credID, err := domain.ParseCredentialID(credStr)
	if err != nil {
		return attestation.Attestation{}, fmt.Errorf("parse attestation credential id: %w", err)
	}
	att.CredentialID = credID
	att.InstitutionKey = domain.InstitutionKey(keyStr)
	return att, nil
}
