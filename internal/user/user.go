// Package user provides account registration and login on top of the
// user store, hashing passwords with bcrypt and issuing JWT tokens.
package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/caioac96/shortener-api-challenge/internal/auth"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// ErrEmailTaken is returned when the email is already registered.
var ErrEmailTaken = errors.New("email already in use")

// ErrBadCredentials is returned when email or password do not match an
// account.
var ErrBadCredentials = errors.New("invalid credentials")

// bcryptCost is the work factor for password hashing.
const bcryptCost = 10

// Service provides account registration and authentication.
type Service struct {
	Store storage.UserStore
}

// Register creates an account and returns it together with a signed
// auth token for the new user.
func (s *Service) Register(ctx context.Context, name, email, password string) (*storage.UserRecord, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	record, err := s.Store.SaveUser(ctx, &storage.UserRecord{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, storage.ErrorDuplicate) {
		return nil, "", ErrEmailTaken
	} else if err != nil {
		return nil, "", err
	}

	token, _, err := auth.BuildJWTString(record.ID)
	if err != nil {
		return nil, "", err
	}

	return record, token, nil
}

// Login verifies the credentials and returns a signed auth token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	record, err := s.Store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrBadCredentials
	} else if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	token, _, err := auth.BuildJWTString(record.ID)
	if err != nil {
		return "", err
	}

	return token, nil
}
