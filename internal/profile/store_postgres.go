package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gesher/internal/identity"
	id "gesher/pkg/domain"
	"gesher/pkg/platform/sentinel"
	"gesher/pkg/platform/tx"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresStore persists profiles in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE profiles (
//	    phone       TEXT PRIMARY KEY,
//	    owner_uid   TEXT NOT NULL,
//	    first_name  TEXT NOT NULL,
//	    last_name   TEXT NOT NULL,
//	    is_resident BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// q returns the context transaction when one is present, the pool otherwise.
func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, phone id.Phone) (*Profile, error) {
	const q = `SELECT phone, owner_uid, first_name, last_name, is_resident
	           FROM profiles WHERE phone = $1`

	var p Profile
	var rawPhone string
	err := s.q(ctx).QueryRowContext(ctx, q, phone.String()).Scan(
		&rawPhone, &p.OwnerUID, &p.FirstName, &p.LastName, &p.IsResident,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Phone = id.Phone(rawPhone)
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Profile, owner identity.Handle) error {
	const q = `INSERT INTO profiles (phone, owner_uid, first_name, last_name, is_resident)
	           VALUES ($1, $2, $3, $4, $5)
	           ON CONFLICT (phone) DO UPDATE
	           SET owner_uid = EXCLUDED.owner_uid,
	               first_name = EXCLUDED.first_name,
	               last_name = EXCLUDED.last_name,
	               is_resident = EXCLUDED.is_resident,
	               updated_at = now()`

	_, err := s.q(ctx).ExecContext(ctx, q,
		p.Phone.String(), owner.UID, p.FirstName, p.LastName, p.IsResident,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsRegistered(ctx context.Context, phone id.Phone) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM profiles WHERE phone = $1)`

	var exists bool
	if err := s.q(ctx).QueryRowContext(ctx, q, phone.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}
