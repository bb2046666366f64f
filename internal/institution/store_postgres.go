package institution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"credanchor/pkg/domain"
)

// PostgresStore persists the trust registry in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed trust registry.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Lookup(ctx context.Context, key domain.InstitutionKey) (Institution, error) {
	query := `
		SELECT pubkey, name, is_whitelisted, created_at
		FROM institutions
		WHERE pubkey = $1
	`
	var inst Institution
	var keyStr string
	err := s.db.QueryRowContext(ctx, query, key.String()).
		Scan(&keyStr, &inst.Name, &inst.Whitelisted, &inst.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Institution{}, ErrNotFound
		}
		return Institution{}, fmt.Errorf("lookup institution: %w", err)
	}
	inst.Key = domain.InstitutionKey(keyStr)
	return inst, nil
}

func (s *PostgresStore) Save(ctx context.Context, inst Institution) error {
	query := `
		INSERT INTO institutions (pubkey, name, is_whitelisted, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pubkey) DO UPDATE SET
			name = EXCLUDED.name,
			is_whitelisted = EXCLUDED.is_whitelisted
	`
	_, err := s.db.ExecContext(ctx, query, inst.Key.String(), inst.Name, inst.Whitelisted, inst.CreatedAt)
	if err != nil {
		return fmt.Errorf("save institution: %w", err)
	}
	return nil
}
