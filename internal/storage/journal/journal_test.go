package journal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	fileName := filepath.Join(t.TempDir(), "links.journal")
	store, err := NewStore(fileName)
	require.NoError(t, err)
	return store, fileName
}

func TestSaveLinkDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveLink(ctx, &storage.LinkRecord{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	_, err = store.SaveLink(ctx, &storage.LinkRecord{ID: "2", ShortCode: "abc123", OriginalURL: "https://example.org"})
	assert.ErrorIs(t, err, storage.ErrorDuplicate)
}

func TestReplay(t *testing.T) {
	store, fileName := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveLink(ctx, &storage.LinkRecord{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com", OwnerID: "u1"})
	require.NoError(t, err)

	_, err = store.ResolveAndCount(ctx, "abc123")
	require.NoError(t, err)
	require.NoError(t, store.SetDeleted(ctx, saved.ID))

	// A fresh store over the same file sees the final state of the
	// record: counted once and deleted.
	reopened, err := NewStore(fileName)
	require.NoError(t, err)

	rec, err := reopened.GetLinkByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.AccessCount)
	assert.NotNil(t, rec.DeletedAt)

	// The deleted code is still claimed; no resurrection.
	_, err = reopened.SaveLink(ctx, &storage.LinkRecord{ID: "3", ShortCode: "abc123", OriginalURL: "https://example.net"})
	assert.ErrorIs(t, err, storage.ErrorDuplicate)
}

func TestResolveAndCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveLink(ctx, &storage.LinkRecord{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	originalURL, err := store.ResolveAndCount(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)

	_, err = store.ResolveAndCount(ctx, "nosuch")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.SetDeleted(ctx, saved.ID))
	_, err = store.ResolveAndCount(ctx, "abc123")
	assert.ErrorIs(t, err, storage.ErrDeleted)
}

func TestResolveAndCountConcurrent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveLink(ctx, &storage.LinkRecord{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	const hits = 100

	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ResolveAndCount(ctx, "abc123")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.GetLinkByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(hits), rec.AccessCount)
}

func TestConcurrentClaimSameCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const racers = 10

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.SaveLink(ctx, &storage.LinkRecord{
				ID:          string(rune('a' + i)),
				ShortCode:   "contended",
				OriginalURL: "https://example.com",
			})
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, storage.ErrorDuplicate)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestDeleteOwnedByCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveLink(ctx, &storage.LinkRecord{ID: "1", ShortCode: "abc123", OriginalURL: "https://example.com", OwnerID: "u1"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteOwnedByCode(ctx, "abc123", "u2"), storage.ErrNotFound)
	assert.NoError(t, store.DeleteOwnedByCode(ctx, "abc123", "u1"))
	assert.ErrorIs(t, store.DeleteOwnedByCode(ctx, "abc123", "u1"), storage.ErrNotFound)
}

func TestUserStore(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	_, err := store.SaveUser(ctx, &storage.UserRecord{ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = store.SaveUser(ctx, &storage.UserRecord{ID: "u2", Name: "Imposter", Email: "ann@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, storage.ErrorDuplicate)

	rec, err := store.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.ID)

	_, err = store.GetUserByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
