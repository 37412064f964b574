package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/caioac96/shortener-api-challenge/internal/logging"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// maxSlugAttempts bounds the random slug retry loop. The loop is
// backoff-free: collisions in a 62^6 space are rare enough that a flat
// retry is sufficient.
const maxSlugAttempts = 5

// CreateShortLink validates the original URL, picks a short code and
// persists the record.
//
// When userID is non-empty and an alias is supplied, the alias is
// normalized and claimed; a taken alias yields ErrAliasTaken. In every
// other case a random 6-character slug is generated, retrying on a
// storage-level duplicate up to maxSlugAttempts times before giving up
// with ErrSlugExhausted. An empty userID produces an anonymous link.
func (s *ShortenerService) CreateShortLink(ctx context.Context, originalURL, alias, userID string) (*storage.LinkRecord, error) {
	if !isValidURL(originalURL) {
		return nil, ErrInvalidURL
	}

	if userID != "" && alias != "" {
		return s.createWithAlias(ctx, originalURL, alias, userID)
	}
	return s.createWithRandomSlug(ctx, originalURL, userID)
}

// createWithAlias claims a user-chosen short code for the link.
func (s *ShortenerService) createWithAlias(ctx context.Context, originalURL, alias, userID string) (*storage.LinkRecord, error) {
	normalized, err := normalizeAlias(alias)
	if err != nil {
		return nil, err
	}

	// Fast-path check. The store's uniqueness constraint stays the
	// source of truth; a concurrent claim still surfaces below as
	// ErrorDuplicate.
	exists, err := s.Store.CodeExists(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAliasTaken
	}

	record, err := s.Store.SaveLink(ctx, &storage.LinkRecord{
		ID:          uuid.New().String(),
		ShortCode:   normalized,
		OriginalURL: originalURL,
		OwnerID:     userID,
	})
	if errors.Is(err, storage.ErrorDuplicate) {
		return nil, ErrAliasTaken
	} else if err != nil {
		return nil, err
	}

	logging.Sugar.Infow("link created", "code", record.ShortCode, "owner", userID)
	return record, nil
}

// createWithRandomSlug allocates a random short code for the link,
// retrying on collision up to maxSlugAttempts times.
func (s *ShortenerService) createWithRandomSlug(ctx context.Context, originalURL, userID string) (*storage.LinkRecord, error) {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		record, err := s.Store.SaveLink(ctx, &storage.LinkRecord{
			ID:          uuid.New().String(),
			ShortCode:   generateSlug(),
			OriginalURL: originalURL,
			OwnerID:     userID,
		})
		if errors.Is(err, storage.ErrorDuplicate) {
			continue
		} else if err != nil {
			return nil, err
		}

		logging.Sugar.Infow("link created", "code", record.ShortCode, "owner", userID)
		return record, nil
	}

	return nil, ErrSlugExhausted
}
