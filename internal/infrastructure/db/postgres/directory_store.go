package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

const (
	usersTable      = "portal_users"
	uniqueViolation = "23505"
)

var userColumns = []string{
	"id", "name", "avatar", "location", "role", "email", "password_hash",
	"wallet_address", "is_mock", "onboarding_complete", "verified", "rating", "created_at",
}

// DirectoryStore persists directory snapshots into portal_users.
type DirectoryStore struct {
	pool *pgxpool.Pool
}

var (
	_ ports.DirectoryStore = (*DirectoryStore)(nil)
	_ ports.Pinger         = (*DirectoryStore)(nil)
)

// NewDirectoryStore wraps pool and applies the table migration.
func NewDirectoryStore(ctx context.Context, pool *pgxpool.Pool) (*DirectoryStore, error) {
	s := &DirectoryStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DirectoryStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portal_users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			wallet_address TEXT NOT NULL DEFAULT '',
			is_mock BOOLEAN NOT NULL DEFAULT FALSE,
			onboarding_complete BOOLEAN NOT NULL DEFAULT FALSE,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS portal_users_email_unique_idx ON portal_users (lower(email)) WHERE email <> '';`,
		`CREATE INDEX IF NOT EXISTS portal_users_wallet_idx ON portal_users (lower(wallet_address)) WHERE wallet_address <> '';`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func (s *DirectoryStore) Load(ctx context.Context) ([]domain.UserRecord, error) {
	const query = `
	SELECT id, name, avatar, location, role, email, password_hash,
		wallet_address, is_mock, onboarding_complete, verified, rating, created_at
	FROM portal_users
	ORDER BY created_at, id;
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var recs []domain.UserRecord
	for rows.Next() {
		var (
			r    domain.UserRecord
			role string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Avatar, &r.Location, &role, &r.Email, &r.PasswordHash,
			&r.WalletAddress, &r.IsMock, &r.OnboardingComplete, &r.Verified, &r.Rating, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		r.Role = domain.Role(role)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return recs, nil
}

// Save replaces the table contents inside one transaction.
func (s *DirectoryStore) Save(ctx context.Context, records []domain.UserRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM portal_users;`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{usersTable}, userColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.ID, r.Name, r.Avatar, r.Location, string(r.Role), r.Email, r.PasswordHash,
				r.WalletAddress, r.IsMock, r.OnboardingComplete, r.Verified, r.Rating, r.CreatedAt,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy users: %w", writeErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// writeErr maps a unique violation onto ErrRegistrationConflict.
func writeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrRegistrationConflict
	}
	return err
}

func (s *DirectoryStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *DirectoryStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
