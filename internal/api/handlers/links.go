package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/caioac96/shortener-api-challenge/internal/app"
	"github.com/caioac96/shortener-api-challenge/internal/auth"
)

// updateRequest holds the replacement target URL in JSON format.
type updateRequest struct {
	URL string `json:"url"`
}

// UpdateLinkHandler replaces the original URL of one of the caller's
// links. The short code itself is immutable.
//
// Possible error codes in response:
// - 400 (Bad Request) if the body or the new URL is malformed.
// - 401 (Unauthorized) if the authentication token is missing or invalid.
// - 403 (Forbidden) if the link belongs to another user or has no owner.
// - 404 (Not Found) if there is no live link with this short code.
// - 500 (Internal Server Error) if the server fails.
func UpdateLinkHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.CurrentUser(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		code := chi.URLParam(r, "code")

		record, err := svc.UpdateLink(r.Context(), code, req.URL, userID)
		switch {
		case errors.Is(err, app.ErrInvalidURL):
			http.Error(w, "Invalid URL", http.StatusBadRequest)
			return
		case errors.Is(err, app.ErrLinkNotFound):
			http.Error(w, "Not found", http.StatusNotFound)
			return
		case errors.Is(err, app.ErrNotOwner):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		case err != nil:
			http.Error(w, "Failed to update URL", http.StatusInternalServerError)
			return
		}

		resp := toLinkResponse(svc, record)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

// DeleteLinkHandler soft-deletes one of the caller's links. The record
// survives in storage; redirects and listings stop seeing it.
//
// Possible error codes in response:
// - 401 (Unauthorized) if the authentication token is missing or invalid.
// - 403 (Forbidden) if the link belongs to another user or has no owner.
// - 404 (Not Found) if there is no live link with this short code.
// - 500 (Internal Server Error) if the server fails.
func DeleteLinkHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.CurrentUser(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		code := chi.URLParam(r, "code")

		err := svc.DeleteLink(r.Context(), code, userID)
		switch {
		case errors.Is(err, app.ErrLinkNotFound):
			http.Error(w, "Not found", http.StatusNotFound)
			return
		case errors.Is(err, app.ErrNotOwner):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		case err != nil:
			http.Error(w, "Failed to delete URL", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// BatchDeleteHandler accepts a JSON array of short codes and schedules
// an asynchronous soft delete of the caller's matching links. It always
// answers 202 Accepted once the batch is scheduled.
//
// Possible error codes in response:
// - 400 (Bad Request) if the request body is empty or malformed.
// - 401 (Unauthorized) if the authentication token is missing or invalid.
func BatchDeleteHandler(svc *app.ShortenerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		userID := auth.CurrentUser(r)
		if userID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var codes []string
		if err := json.Unmarshal(body, &codes); err != nil || len(codes) == 0 {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		svc.BatchDeleteAsync(userID, codes)
	}
}
