// Package storage defines the persistence contracts of the shortener:
// record types, store interfaces and the sentinel errors shared by all
// store implementations (PostgreSQL and the file-journal fallback).
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrorDuplicate is returned by a store when an insert violates a
// uniqueness constraint (short code or user email).
var ErrorDuplicate = errors.New("record already exists")

// ErrNotFound is returned when no matching record exists in the store.
var ErrNotFound = errors.New("record not found")

// ErrDeleted is returned when the matching record exists but is marked
// as deleted.
var ErrDeleted = errors.New("record is deleted")

// LinkRecord is a persisted short link.
type LinkRecord struct {
	// ID is the record identifier assigned at creation, immutable.
	ID string `json:"id"`
	// ShortCode is the unique token resolving to the original URL.
	ShortCode string `json:"short_code"`
	// OriginalURL is the redirect target.
	OriginalURL string `json:"original_url"`
	// OwnerID references the owning user. Empty means the link is
	// anonymous and may not be updated or deleted.
	OwnerID string `json:"owner_id,omitempty"`
	// AccessCount is the number of successful redirects served.
	AccessCount int64 `json:"access_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// UserRecord is a registered account able to own links.
type UserRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LinkStore abstracts the durable storage of link records.
//
// Uniqueness of ShortCode is enforced by the implementation itself, not
// by callers: concurrent inserts of the same code must leave exactly one
// winner, the loser observing ErrorDuplicate. Likewise ResolveAndCount
// must increment atomically so that concurrent redirects never lose
// counts.
type LinkStore interface {
	// SaveLink inserts a new link record and returns the stored copy
	// with timestamps filled in. Returns ErrorDuplicate if the short
	// code is already taken.
	SaveLink(ctx context.Context, link *LinkRecord) (*LinkRecord, error)

	// CodeExists reports whether a non-deleted link with the given
	// short code exists. It is a fast-path check only; SaveLink is the
	// source of truth for uniqueness.
	CodeExists(ctx context.Context, code string) (bool, error)

	// GetLinkByCode returns the link with the given short code whether
	// or not it is deleted. Returns ErrNotFound if no such record.
	GetLinkByCode(ctx context.Context, code string) (*LinkRecord, error)

	// GetOwnerLinks returns the non-deleted links of an owner, newest
	// first. An owner without links gets an empty slice, not an error.
	GetOwnerLinks(ctx context.Context, ownerID string) ([]LinkRecord, error)

	// UpdateOriginalURL replaces the target URL of a non-deleted link
	// and bumps its updated timestamp. Returns ErrNotFound if the
	// record is missing or deleted.
	UpdateOriginalURL(ctx context.Context, id, originalURL string) (*LinkRecord, error)

	// ResolveAndCount atomically increments the access counter of the
	// non-deleted link with the given code and returns its original
	// URL. Returns ErrDeleted for a soft-deleted record and
	// ErrNotFound for a missing one.
	ResolveAndCount(ctx context.Context, code string) (string, error)

	// SetDeleted marks the record with the given id as deleted. The
	// row survives; only the deletion timestamp is set.
	SetDeleted(ctx context.Context, id string) error

	// DeleteOwnedByCode marks the link as deleted only if it belongs
	// to the given owner. Missing, foreign or already deleted records
	// are left untouched and reported as ErrNotFound.
	DeleteOwnedByCode(ctx context.Context, code, ownerID string) error

	// CountLinks returns the total number of stored links, deleted
	// ones included.
	CountLinks(ctx context.Context) (int, error)
}

// UserStore abstracts the durable storage of user accounts.
type UserStore interface {
	// SaveUser inserts a new account. Returns ErrorDuplicate if the
	// email is already registered.
	SaveUser(ctx context.Context, user *UserRecord) (*UserRecord, error)

	// GetUserByEmail returns the account registered under email.
	// Returns ErrNotFound if there is none.
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)

	// CountUsers returns the number of registered accounts.
	CountUsers(ctx context.Context) (int, error)
}
