package app

import (
	"context"
	"errors"

	"github.com/caioac96/shortener-api-challenge/internal/logging"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// GetUserLinks returns all non-deleted short links created by the user,
// newest first.
func (s *ShortenerService) GetUserLinks(ctx context.Context, userID string) ([]storage.LinkRecord, error) {
	if userID == "" {
		return []storage.LinkRecord{}, nil
	}

	return s.Store.GetOwnerLinks(ctx, userID)
}

// UpdateLink replaces the original URL of the link with the given short
// code, provided userID owns it. The new URL is validated the same way
// as at creation. Ownership failures are reported as ErrNotOwner rather
// than masked as not-found; existence of a code is not considered
// sensitive here.
func (s *ShortenerService) UpdateLink(ctx context.Context, code, originalURL, userID string) (*storage.LinkRecord, error) {
	if !isValidURL(originalURL) {
		return nil, ErrInvalidURL
	}

	record, err := s.ownedLink(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.Store.UpdateOriginalURL(ctx, record.ID, originalURL)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between lookup and update.
		return nil, ErrLinkNotFound
	} else if err != nil {
		return nil, err
	}

	logging.Sugar.Infow("link updated", "code", updated.ShortCode, "owner", userID)
	return updated, nil
}

// DeleteLink soft-deletes the link with the given short code, provided
// userID owns it. The record survives with its deletion timestamp set;
// normal reads and redirects stop seeing it.
func (s *ShortenerService) DeleteLink(ctx context.Context, code, userID string) error {
	record, err := s.ownedLink(ctx, code, userID)
	if err != nil {
		return err
	}

	err = s.Store.SetDeleted(ctx, record.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrLinkNotFound
	} else if err != nil {
		return err
	}

	logging.Sugar.Infow("link deleted", "code", record.ShortCode, "owner", userID)
	return nil
}

// ownedLink looks up a live link by code and checks that userID owns it.
func (s *ShortenerService) ownedLink(ctx context.Context, code, userID string) (*storage.LinkRecord, error) {
	record, err := s.Store.GetLinkByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrLinkNotFound
	} else if err != nil {
		return nil, err
	}

	if record.DeletedAt != nil {
		return nil, ErrLinkNotFound
	}
	if record.OwnerID == "" || record.OwnerID != userID {
		return nil, ErrNotOwner
	}

	return record, nil
}
