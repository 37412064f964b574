// Package handlers implements the HTTP surface of the shortener. Each
// handler translates the sentinel errors of the service layer into
// transport status codes and never leaks storage detail to clients.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/caioac96/shortener-api-challenge/internal/app"
	"github.com/caioac96/shortener-api-challenge/internal/auth"
)

// shortenRequest holds an original URL and optional custom alias in JSON format.
type shortenRequest struct {
	URL   string `json:"url"`
	Alias string `json:"alias,omitempty"`
}

// shortenResponse holds a short URL in JSON format.
type shortenResponse struct {
	Result string `json:"result"`
}

// PostHandler handles a plain-text POST request containing the original
// URL and creates a short URL for it. Upon successful creation, it
// responds with a 201 Created status and the shortened URL.
//
// Possible error codes in response:
// - 400 (Bad Request) if the request body is empty or not a valid http/https URL.
// - 500 (Internal Server Error) if the server fails.
func PostHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		// Reuse the caller's identity or mint a fresh one so the link
		// can be managed later.
		userID, err := auth.EnsureUser(w, r)
		if err != nil {
			http.Error(w, "Error while generating token", http.StatusInternalServerError)
			return
		}

		record, err := svc.CreateShortLink(r.Context(), string(body), "", userID)
		if errors.Is(err, app.ErrInvalidURL) {
			http.Error(w, "Invalid URL", http.StatusBadRequest)
			return
		} else if err != nil {
			http.Error(w, "Failed to save URL", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(svc.ShortURL(record.ShortCode)))
	}
}

// APIShortenHandler handles the creation of a new shortened URL in JSON
// format. It expects a POST request with a JSON payload containing the
// original URL and, for authenticated callers, an optional custom alias.
// Upon successful creation, it responds with a 201 Created status and
// the shortened URL.
//
// Possible error codes in response:
// - 400 (Bad Request) if the URL or the alias is malformed.
// - 409 (Conflict) if the requested alias is already taken.
// - 500 (Internal Server Error) if the server fails.
func APIShortenHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		decoder := json.NewDecoder(r.Body)
		if err := decoder.Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		userID, err := auth.EnsureUser(w, r)
		if err != nil {
			http.Error(w, "Error while generating token", http.StatusInternalServerError)
			return
		}

		record, err := svc.CreateShortLink(r.Context(), req.URL, req.Alias, userID)
		switch {
		case errors.Is(err, app.ErrInvalidURL), errors.Is(err, app.ErrInvalidAlias):
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		case errors.Is(err, app.ErrAliasTaken):
			http.Error(w, "Alias already taken", http.StatusConflict)
			return
		case err != nil:
			http.Error(w, "Failed to save URL", http.StatusInternalServerError)
			return
		}

		res := shortenResponse{
			Result: svc.ShortURL(record.ShortCode),
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}
}
