package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caioac96/shortener-api-challenge/internal/auth"
	"github.com/caioac96/shortener-api-challenge/internal/user"
)

// registerRequest holds the fields of a registration request.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest holds the fields of a login request.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse carries the issued auth token.
type tokenResponse struct {
	Token string `json:"token"`
}

// RegisterHandler creates a new account and signs the caller in by
// setting the auth cookie and returning the token.
//
// Possible error codes in response:
// - 400 (Bad Request) if required fields are missing.
// - 409 (Conflict) if the email is already registered.
// - 500 (Internal Server Error) if the server fails.
func RegisterHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.Email == "" || req.Password == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		_, token, err := svc.Register(r.Context(), req.Name, req.Email, req.Password)
		if errors.Is(err, user.ErrEmailTaken) {
			http.Error(w, "Email already in use", http.StatusConflict)
			return
		} else if err != nil {
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}

		auth.SetAuthCookie(w, token)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(tokenResponse{Token: token})
	}
}

// LoginHandler verifies credentials and signs the caller in by setting
// the auth cookie and returning the token.
//
// Possible error codes in response:
// - 400 (Bad Request) if required fields are missing.
// - 401 (Unauthorized) if the credentials do not match an account.
// - 500 (Internal Server Error) if the server fails.
func LoginHandler(svc *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.Email == "" || req.Password == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		token, err := svc.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, user.ErrBadCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		} else if err != nil {
			http.Error(w, "Failed to login", http.StatusInternalServerError)
			return
		}

		auth.SetAuthCookie(w, token)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(tokenResponse{Token: token})
	}
}
