package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caioac96/shortener-api-challenge/internal/app"
	"github.com/caioac96/shortener-api-challenge/internal/auth"
	"github.com/caioac96/shortener-api-challenge/internal/storage"
)

// linkResponse is the JSON shape of a link returned to its owner.
type linkResponse struct {
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
	AccessCount int64  `json:"access_count"`
	CreatedAt   string `json:"created_at"`
}

func toLinkResponse(svc *app.ShortenerService, rec *storage.LinkRecord) linkResponse {
	return linkResponse{
		ShortURL:    svc.ShortURL(rec.ShortCode),
		OriginalURL: rec.OriginalURL,
		AccessCount: rec.AccessCount,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

// GetHandler handles redirection from a short URL to the original URL.
// Each successful redirect counts one access.
//
// Possible error codes in response:
// - 404 (Not Found) if there is no link for the requested short code.
// - 410 (Gone) if the link is deleted.
// - 500 (Internal Server Error) if the server fails.
func GetHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		originalURL, err := svc.ResolveLink(r.Context(), code)
		if errors.Is(err, app.ErrLinkNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		} else if errors.Is(err, app.ErrLinkDeleted) {
			http.Error(w, "URL has been deleted", http.StatusGone)
			return
		} else if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Location", originalURL)
		w.WriteHeader(http.StatusTemporaryRedirect)
	}
}

// PingDBHandler checks the connection to the PostgreSQL database.
//
// Possible error codes in response:
// - 500 (Internal Server Error) if the server fails to connect to a database.
func PingDBHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			http.Error(w, "Unable to connect to database", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// GetUserURLsHandler retrieves all links created by the authenticated
// user, newest first.
//
// Possible error codes in response:
// - 204 (No Content) if the user has no links.
// - 401 (Unauthorized) if the authentication token is missing or invalid.
// - 500 (Internal Server Error) if the server fails.
func GetUserURLsHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.CurrentUser(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		records, err := svc.GetUserLinks(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to get a list of user's URLs", http.StatusInternalServerError)
			return
		}

		if len(records) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		resp := make([]linkResponse, 0, len(records))
		for i := range records {
			resp = append(resp, toLinkResponse(svc, &records[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

// StatsResponse holds the number of shortened links and registered users
// in JSON format.
type StatsResponse struct {
	// URLs is a number of links in the service.
	URLs int `json:"urls"`

	// Users is a number of registered users in the service.
	Users int `json:"users"`
}

// GetStatsHandler checks if the caller's IP address is in the trusted
// subnet and returns service statistics if so.
//
// Possible error codes in response:
// - 403 (Forbidden) if IP is not in trusted subnet or no trusted subnet specified.
// - 500 (Internal Server Error) if the server fails.
func GetStatsHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Real-IP")

		if err := svc.CheckTrustedSubnet(clientIP); err != nil {
			switch {
			case errors.Is(err, app.ErrNoTrustedSubnet),
				errors.Is(err, app.ErrIPNotInSubnet),
				errors.Is(err, app.ErrNoClientIP):
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			default:
				// CIDR parsing error.
				http.Error(w, "Invalid trusted subnet", http.StatusInternalServerError)
				return
			}
		}

		urls, users, err := svc.GetStats(r.Context())
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}

		resp := StatsResponse{
			URLs:  urls,
			Users: users,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
