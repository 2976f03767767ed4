package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "gesher/pkg/domain"
	"gesher/pkg/platform/tx"
)

// PostgresStore reads legacy credential rows from PostgreSQL.
//
// Schema (owned by the provisioning tooling, read here):
//
//	CREATE TABLE legacy_credentials (
//	    phone      TEXT PRIMARY KEY,
//	    secret     TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed legacy credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Verify(ctx context.Context, phone id.Phone, password string) (bool, error) {
	const q = `SELECT secret FROM legacy_credentials WHERE phone = $1`

	db := querier(s.db)
	if t, ok := tx.From(ctx); ok {
		db = t
	}

	var stored string
	err := db.QueryRowContext(ctx, q, phone.String()).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup legacy credential: %w", err)
	}
	return matchSecret(stored, password)
}
