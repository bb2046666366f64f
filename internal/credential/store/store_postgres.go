package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"credanchor/internal/credential/models"
	"credanchor/pkg/domain"
)

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, credential models.StoredCredential) error {
	attrBytes, err := json.Marshal(credential.Attributes)
	if err != nil {
		return fmt.Errorf("marshal credential attributes: %w", err)
	}
	query := `
		INSERT INTO credentials (id, owner_did, type, issuer, title, start_date, end_date, attributes, credential_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		credential.ID.String(),
		credential.OwnerDID.String(),
		string(credential.Type),
		credential.Issuer,
		credential.Title,
		nullString(credential.StartDate),
		nullString(credential.EndDate),
		attrBytes,
		credential.Hash,
		credential.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CredentialID) (models.StoredCredential, error) {
	query := selectCredential + ` WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id.String()))
}

func (s *PostgresStore) FindByOwner(ctx context.Context, id domain.CredentialID, owner domain.DID) (models.StoredCredential, error) {
	query := selectCredential + ` WHERE id = $1 AND owner_did = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id.String(), owner.String()))
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner domain.DID) ([]models.StoredCredential, error) {
	query := selectCredential + ` WHERE owner_did = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []models.StoredCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return out, nil
}

const selectCredential = `
	SELECT id, owner_did, type, issuer, title, start_date, end_date, attributes, credential_hash, created_at
	FROM credentials`

func (s *PostgresStore) scanOne(row *sql.Row) (models.StoredCredential, error) {
	cred, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StoredCredential{}, ErrNotFound
		}
		return models.StoredCredential{}, fmt.Errorf("find credential: %w", err)
	}
	return cred, nil
}

type credentialRow interface {
	Scan(dest ...any) error
}

func scanCredential(row credentialRow) (models.StoredCredential, error) {
	var cred models.StoredCredential
	var idStr, ownerStr, typeStr string
	var startDate, endDate sql.NullString
	var attrBytes []byte
	if err := row.Scan(&idStr, &ownerStr, &typeStr, &cred.Issuer, &cred.Title, &startDate, &endDate, &attrBytes, &cred.Hash, &cred.CreatedAt); err != nil {
		return models.StoredCredential{}, err
	}

	id, err := domain.ParseCredentialID(idStr)
	if err != nil {
		return models.StoredCredential{}, fmt.Errorf("parse credential id: %w", err)
	}
	cred.ID = id
	cred.OwnerDID = domain.DID(ownerStr)
	cred.Type = models.CredentialType(typeStr)
	cred.StartDate = startDate.String
	cred.EndDate = endDate.String

	if len(attrBytes) > 0 {
		if err := json.Unmarshal(attrBytes, &cred.Attributes); err != nil {
			return models.StoredCredential{}, fmt.Errorf("unmarshal credential attributes: %w", err)
		}
	}
	return cred, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
