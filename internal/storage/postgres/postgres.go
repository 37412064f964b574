// Package postgres implements the storage interfaces on top of a
// PostgreSQL database accessed through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// uniqueViolation is the SQLSTATE code PostgreSQL reports when an
// insert breaks a unique constraint.
const uniqueViolation = "23505"

// Bootstrap creates the links and users tables if they do not exist yet.
// Statements run one by one; pgx's default exec mode does not accept
// multi-statement queries.
func Bootstrap(ctx context.Context, db *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		// owner_id is a weak reference: identities minted for anonymous
		// cookie holders never appear in users, and links must survive
		// account removal.
		`CREATE TABLE IF NOT EXISTS links (
            id UUID PRIMARY KEY,
            short_code TEXT NOT NULL UNIQUE,
            original_url TEXT NOT NULL,
            owner_id UUID,
            access_count BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            deleted_at TIMESTAMPTZ
        )`,
	}

	for _, query := range queries {
		if _, err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("unable to create tables: %w", err)
		}
	}
	return nil
}

// LinkStore is the PostgreSQL implementation of storage.LinkStore.
type LinkStore struct {
	db *pgxpool.Pool
}

// NewLinkStore returns a LinkStore working over the given pool.
func NewLinkStore(db *pgxpool.Pool) *LinkStore {
	return &LinkStore{db: db}
}

// SaveLink inserts a new link row. The unique index on short_code is the
// source of truth for code uniqueness; a violation maps to
// storage.ErrorDuplicate.
func (s *LinkStore) SaveLink(ctx context.Context, link *storage.LinkRecord) (*storage.LinkRecord, error) {
	query := `
        INSERT INTO links (id, short_code, original_url, owner_id)
        VALUES ($1, $2, $3, NULLIF($4, '')::uuid)
        RETURNING created_at, updated_at`

	saved := *link
	err := s.db.QueryRow(ctx, query, link.ID, link.ShortCode, link.OriginalURL, link.OwnerID).
		Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, storage.ErrorDuplicate
		}
		return nil, fmt.Errorf("unable to insert link: %w", err)
	}

	return &saved, nil
}

// CodeExists reports whether a live link already claims the code.
func (s *LinkStore) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("unable to check short code: %w", err)
	}
	return exists, nil
}

// GetLinkByCode fetches a link row by short code, deleted rows included.
func (s *LinkStore) GetLinkByCode(ctx context.Context, code string) (*storage.LinkRecord, error) {
	query := `
        SELECT id, short_code, original_url, COALESCE(owner_id::text, ''),
               access_count, created_at, updated_at, deleted_at
        FROM links
        WHERE short_code = $1`

	var rec storage.LinkRecord
	err := s.db.QueryRow(ctx, query, code).Scan(
		&rec.ID, &rec.ShortCode, &rec.OriginalURL, &rec.OwnerID,
		&rec.AccessCount, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("unable to get link: %w", err)
	}

	return &rec, nil
}

// GetOwnerLinks lists the live links of an owner, newest first.
func (s *LinkStore) GetOwnerLinks(ctx context.Context, ownerID string) ([]storage.LinkRecord, error) {
	query := `
        SELECT id, short_code, original_url, COALESCE(owner_id::text, ''),
               access_count, created_at, updated_at, deleted_at
        FROM links
        WHERE owner_id = $1::uuid AND deleted_at IS NULL
        ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("unable to list links: %w", err)
	}
	defer rows.Close()

	records := []storage.LinkRecord{}
	for rows.Next() {
		var rec storage.LinkRecord
		err := rows.Scan(
			&rec.ID, &rec.ShortCode, &rec.OriginalURL, &rec.OwnerID,
			&rec.AccessCount, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan link: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list links: %w", err)
	}

	return records, nil
}

// UpdateOriginalURL rewrites the target URL of a live link.
func (s *LinkStore) UpdateOriginalURL(ctx context.Context, id, originalURL string) (*storage.LinkRecord, error) {
	query := `
        UPDATE links
        SET original_url = $2, updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING id, short_code, original_url, COALESCE(owner_id::text, ''),
                  access_count, created_at, updated_at, deleted_at`

	var rec storage.LinkRecord
	err := s.db.QueryRow(ctx, query, id, originalURL).Scan(
		&rec.ID, &rec.ShortCode, &rec.OriginalURL, &rec.OwnerID,
		&rec.AccessCount, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("unable to update link: %w", err)
	}

	return &rec, nil
}

// ResolveAndCount bumps the access counter and returns the target URL in
// a single statement, so concurrent redirects cannot lose increments.
func (s *LinkStore) ResolveAndCount(ctx context.Context, code string) (string, error) {
	query := `
        UPDATE links
        SET access_count = access_count + 1
        WHERE short_code = $1 AND deleted_at IS NULL
        RETURNING original_url`

	var originalURL string
	err := s.db.QueryRow(ctx, query, code).Scan(&originalURL)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a deleted link from a missing one.
		var deleted bool
		q := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1 AND deleted_at IS NOT NULL)`
		if e := s.db.QueryRow(ctx, q, code).Scan(&deleted); e != nil {
			return "", fmt.Errorf("unable to resolve link: %w", e)
		}
		if deleted {
			return "", storage.ErrDeleted
		}
		return "", storage.ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("unable to resolve link: %w", err)
	}

	return originalURL, nil
}

// SetDeleted stamps a link as deleted without removing the row.
func (s *LinkStore) SetDeleted(ctx context.Context, id string) error {
	query := `UPDATE links SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("unable to delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteOwnedByCode stamps a link as deleted only when owned by ownerID.
func (s *LinkStore) DeleteOwnedByCode(ctx context.Context, code, ownerID string) error {
	query := `
        UPDATE links
        SET deleted_at = now(), updated_at = now()
        WHERE short_code = $1 AND owner_id = $2::uuid AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, query, code, ownerID)
	if err != nil {
		return fmt.Errorf("unable to delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountLinks counts all links ever shortened, deleted ones included.
func (s *LinkStore) CountLinks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM links`).Scan(&count); err != nil {
		return 0, fmt.Errorf("unable to count links: %w", err)
	}
	return count, nil
}

// UserStore is the PostgreSQL implementation of storage.UserStore.
type UserStore struct {
	db *pgxpool.Pool
}

// NewUserStore returns a UserStore working over the given pool.
func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

// SaveUser inserts a new account row. A duplicate email maps to
// storage.ErrorDuplicate.
func (s *UserStore) SaveUser(ctx context.Context, user *storage.UserRecord) (*storage.UserRecord, error) {
	query := `
        INSERT INTO users (id, name, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	saved := *user
	err := s.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash).
		Scan(&saved.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, storage.ErrorDuplicate
		}
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	return &saved, nil
}

// GetUserByEmail fetches an account by its registered email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*storage.UserRecord, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	var rec storage.UserRecord
	err := s.db.QueryRow(ctx, query, email).Scan(
		&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("unable to get user: %w", err)
	}

	return &rec, nil
}

// CountUsers counts registered accounts.
func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("unable to count users: %w", err)
	}
	return count, nil
}
