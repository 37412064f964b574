// Package app provides the business logic for managing shortened links:
// creating them from random slugs or user-chosen aliases, resolving
// redirects with access counting, and owner-gated update and delete.
package app

import (
	"errors"

	"github.com/caioac96/shortener-api-challenge/internal/config"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

var (
	// ErrInvalidURL is returned when the submitted URL is not an
	// absolute http or https URL.
	ErrInvalidURL = errors.New("invalid original url")
	// ErrInvalidAlias is returned when a custom alias does not satisfy
	// the alias format after normalization.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrAliasTaken is returned when the requested alias is already
	// claimed by a live link.
	ErrAliasTaken = errors.New("alias already taken")
	// ErrLinkNotFound is returned when no link exists for a short code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkDeleted is returned when the link exists but has been
	// deleted.
	ErrLinkDeleted = errors.New("link deleted")
	// ErrNotOwner is returned when a mutation is attempted by someone
	// other than the link's owner. Anonymous links have no owner and
	// always fail the gate.
	ErrNotOwner = errors.New("link owned by another user")
	// ErrSlugExhausted is returned when random slug generation keeps
	// colliding. With a 62^6 code space repeated collisions indicate
	// systemic trouble, not bad luck, so it is an internal failure
	// rather than a conflict.
	ErrSlugExhausted = errors.New("random slug attempts exhausted")
)

// ShortenerService is the facade providing business logic for short links.
type ShortenerService struct {
	Store storage.LinkStore
	Users storage.UserStore
	Cfg   *config.Config
}

// ShortURL builds the public short URL for a stored record.
func (s *ShortenerService) ShortURL(code string) string {
	return s.Cfg.BaseURL + "/" + code
}
