package app

import (
	"context"
	"errors"

	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// ResolveLink finds the original URL for a short code and counts the hit.
// The counter increment happens inside the store so concurrent redirects
// never lose counts. This is the hot path; it costs a single store call.
func (s *ShortenerService) ResolveLink(ctx context.Context, code string) (string, error) {
	originalURL, err := s.Store.ResolveAndCount(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrLinkNotFound
	} else if errors.Is(err, storage.ErrDeleted) {
		return "", ErrLinkDeleted
	} else if err != nil {
		return "", err
	}

	return originalURL, nil
}
