// Package journal implements the link store over an append-only
// JSON-lines file. Every mutation appends the full record; opening the
// store replays the journal into memory with the last record for an id
// winning. It backs local runs without a database and the tests.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// Producer appends link records to the journal file.
type Producer struct {
	File    *os.File
	encoder *json.Encoder
}

// NewProducer opens the journal file for appending.
func NewProducer(fileName string) (*Producer, error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	return &Producer{
		File:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// WriteRecord appends one record to the journal.
func (p *Producer) WriteRecord(rec *storage.LinkRecord) error {
	return p.encoder.Encode(rec)
}

// Consumer reads link records back from the journal file.
type Consumer struct {
	File    *os.File
	decoder *json.Decoder
}

// NewConsumer opens the journal file for reading, creating it if absent.
func NewConsumer(fileName string) (*Consumer, error) {
	file, err := os.OpenFile(fileName, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		File:    file,
		decoder: json.NewDecoder(file),
	}, nil
}

// ReadRecord reads the next record from the journal.
func (c *Consumer) ReadRecord() (*storage.LinkRecord, error) {
	rec := &storage.LinkRecord{}
	if err := c.decoder.Decode(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Store is the journal-backed implementation of storage.LinkStore.
// A single mutex guards the in-memory state and the file append, which
// makes code claiming and counter increments atomic.
type Store struct {
	mu       sync.Mutex
	fileName string
	byID     map[string]*storage.LinkRecord
	byCode   map[string]string // short code -> record id
}

// NewStore opens the journal at fileName and replays it.
func NewStore(fileName string) (*Store, error) {
	store := &Store{
		fileName: fileName,
		byID:     make(map[string]*storage.LinkRecord),
		byCode:   make(map[string]string),
	}

	if err := store.replay(); err != nil {
		return nil, fmt.Errorf("unable to replay journal: %w", err)
	}
	return store, nil
}

// replay loads the journal into memory. Later records overwrite earlier
// ones with the same id.
func (s *Store) replay() error {
	consumer, err := NewConsumer(s.fileName)
	if err != nil {
		return err
	}
	defer consumer.File.Close()

	for {
		rec, err := consumer.ReadRecord()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		s.byID[rec.ID] = rec
		s.byCode[rec.ShortCode] = rec.ID
	}

	return nil
}

// append writes the current state of a record to the journal file.
func (s *Store) append(rec *storage.LinkRecord) error {
	producer, err := NewProducer(s.fileName)
	if err != nil {
		return err
	}
	defer producer.File.Close()

	return producer.WriteRecord(rec)
}

// SaveLink claims the short code and journals the new record.
func (s *Store) SaveLink(ctx context.Context, link *storage.LinkRecord) (*storage.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCode[link.ShortCode]; taken {
		return nil, storage.ErrorDuplicate
	}

	now := time.Now()
	saved := *link
	saved.CreatedAt = now
	saved.UpdatedAt = now

	if err := s.append(&saved); err != nil {
		return nil, err
	}

	s.byID[saved.ID] = &saved
	s.byCode[saved.ShortCode] = saved.ID

	copied := saved
	return &copied, nil
}

// CodeExists reports whether a live record claims the code.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return false, nil
	}
	return s.byID[id].DeletedAt == nil, nil
}

// GetLinkByCode returns a copy of the record with the given code.
func (s *Store) GetLinkByCode(ctx context.Context, code string) (*storage.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copied := *s.byID[id]
	return &copied, nil
}

// GetOwnerLinks returns copies of the owner's live records, newest first.
func (s *Store) GetOwnerLinks(ctx context.Context, ownerID string) ([]storage.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []storage.LinkRecord{}
	for _, rec := range s.byID {
		if rec.OwnerID == ownerID && rec.DeletedAt == nil {
			records = append(records, *rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// UpdateOriginalURL rewrites the target URL of a live record.
func (s *Store) UpdateOriginalURL(ctx context.Context, id, originalURL string) (*storage.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.DeletedAt != nil {
		return nil, storage.ErrNotFound
	}

	rec.OriginalURL = originalURL
	rec.UpdatedAt = time.Now()

	if err := s.append(rec); err != nil {
		return nil, err
	}

	copied := *rec
	return &copied, nil
}

// ResolveAndCount increments the access counter under the store lock.
func (s *Store) ResolveAndCount(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return "", storage.ErrNotFound
	}

	rec := s.byID[id]
	if rec.DeletedAt != nil {
		return "", storage.ErrDeleted
	}

	rec.AccessCount++
	if err := s.append(rec); err != nil {
		return "", err
	}

	return rec.OriginalURL, nil
}

// SetDeleted stamps a record as deleted.
func (s *Store) SetDeleted(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok || rec.DeletedAt != nil {
		return storage.ErrNotFound
	}

	now := time.Now()
	rec.DeletedAt = &now
	rec.UpdatedAt = now

	return s.append(rec)
}

// DeleteOwnedByCode stamps a record as deleted if ownerID owns it.
func (s *Store) DeleteOwnedByCode(ctx context.Context, code, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return storage.ErrNotFound
	}

	rec := s.byID[id]
	if rec.DeletedAt != nil || rec.OwnerID != ownerID {
		return storage.ErrNotFound
	}

	now := time.Now()
	rec.DeletedAt = &now
	rec.UpdatedAt = now

	return s.append(rec)
}

// CountLinks counts every record ever journaled, deleted ones included.
func (s *Store) CountLinks(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byID), nil
}

// UserStore keeps accounts in memory. Journal mode targets local runs
// and tests; durable accounts require the database store.
type UserStore struct {
	mu      sync.Mutex
	byEmail map[string]*storage.UserRecord
}

// NewUserStore returns an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]*storage.UserRecord)}
}

// SaveUser registers an account, rejecting duplicate emails.
func (s *UserStore) SaveUser(ctx context.Context, user *storage.UserRecord) (*storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return nil, storage.ErrorDuplicate
	}

	saved := *user
	saved.CreatedAt = time.Now()
	s.byEmail[saved.Email] = &saved

	copied := saved
	return &copied, nil
}

// GetUserByEmail returns a copy of the account registered under email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*storage.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copied := *rec
	return &copied, nil
}

// CountUsers counts registered accounts.
func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byEmail), nil
}
