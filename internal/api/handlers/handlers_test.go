package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caioac96/shortener-api-challenge/internal/app"
	"github.com/caioac96/shortener-api-challenge/internal/config"
	"github.com/caioac96/shortener-api-challenge/internal/storage/journal"
	"github.com/caioac96/shortener-api-challenge/internal/user"
)

func newTestRouter(t *testing.T) (*chi.Mux, *app.ShortenerService) {
	t.Helper()

	store, err := journal.NewStore(filepath.Join(t.TempDir(), "links.journal"))
	require.NoError(t, err)
	users := journal.NewUserStore()

	svc := &app.ShortenerService{
		Store: store,
		Users: users,
		Cfg: &config.Config{
			Address:       "localhost:8080",
			BaseURL:       "http://localhost:8080",
			TrustedSubnet: "127.0.0.0/8",
		},
	}
	accounts := &user.Service{Store: users}

	r := chi.NewRouter()
	r.Post("/", PostHandler(svc))
	r.Get("/{code}", GetHandler(svc))
	r.Post("/api/shorten", APIShortenHandler(svc))
	r.Post("/api/user/register", RegisterHandler(accounts))
	r.Post("/api/user/login", LoginHandler(accounts))
	r.Get("/api/user/urls", GetUserURLsHandler(svc))
	r.Put("/api/user/urls/{code}", UpdateLinkHandler(svc))
	r.Delete("/api/user/urls/{code}", DeleteLinkHandler(svc))
	r.Delete("/api/user/urls", BatchDeleteHandler(svc))
	r.Get("/api/internal/stats", GetStatsHandler(svc))

	return r, svc
}

// do serves one request through the router, attaching the given cookies.
func do(r *chi.Mux, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://ya.ru")), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "http://localhost:8080/"))
	assert.NotEmpty(t, w.Result().Cookies())

	w = do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not a url")), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, httptest.NewRequest(http.MethodPost, "/", nil), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIShortenHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://ya.ru"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.Result, "http://localhost:8080/"))

	w = do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", bytes.NewBufferString(`{"url":"ftp://ya.ru"}`)), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", bytes.NewBufferString(`not json`)), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIShortenHandlerAlias(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://example.com","alias":"My-Link"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "http://localhost:8080/my-link", res.Result)

	// Another caller claiming the same alias observes a conflict.
	body = bytes.NewBufferString(`{"url":"https://example.org","alias":"my-link"}`)
	w = do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Malformed alias.
	body = bytes.NewBufferString(`{"url":"https://example.org","alias":"a!"}`)
	w = do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://example.com","alias":"my-link"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/my-link", nil), nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))

	w = do(r, httptest.NewRequest(http.MethodGet, "/nosuch", nil), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserURLsHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	// Unauthenticated.
	w := do(r, httptest.NewRequest(http.MethodGet, "/api/user/urls", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Create a link; the response mints an identity cookie.
	w = do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://ya.ru")), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(r, httptest.NewRequest(http.MethodGet, "/api/user/urls", nil), cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var records []struct {
		ShortURL    string `json:"short_url"`
		OriginalURL string `json:"original_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "https://ya.ru", records[0].OriginalURL)
}

func TestUpdateLinkHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://example.com","alias":"my-link"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	owner := w.Result().Cookies()

	// The owner can update the target URL.
	upd := bytes.NewBufferString(`{"url":"https://example.org"}`)
	w = do(r, httptest.NewRequest(http.MethodPut, "/api/user/urls/my-link", upd), owner)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		OriginalURL string `json:"original_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "https://example.org", res.OriginalURL)

	// A stranger gets 403 and the link stays put.
	w = do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://ya.ru")), nil)
	stranger := w.Result().Cookies()

	upd = bytes.NewBufferString(`{"url":"https://evil.example"}`)
	w = do(r, httptest.NewRequest(http.MethodPut, "/api/user/urls/my-link", upd), stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, httptest.NewRequest(http.MethodGet, "/my-link", nil), nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://example.org", w.Header().Get("Location"))

	// Unknown code.
	upd = bytes.NewBufferString(`{"url":"https://example.org"}`)
	w = do(r, httptest.NewRequest(http.MethodPut, "/api/user/urls/nosuch", upd), owner)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unauthenticated.
	upd = bytes.NewBufferString(`{"url":"https://example.org"}`)
	w = do(r, httptest.NewRequest(http.MethodPut, "/api/user/urls/my-link", upd), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteLinkHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://example.com","alias":"my-link"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	owner := w.Result().Cookies()

	// A stranger cannot delete it.
	w = do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://ya.ru")), nil)
	stranger := w.Result().Cookies()

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/user/urls/my-link", nil), stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/user/urls/my-link", nil), owner)
	require.Equal(t, http.StatusOK, w.Code)

	// Redirects answer 410 for the deleted link.
	w = do(r, httptest.NewRequest(http.MethodGet, "/my-link", nil), nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestBatchDeleteHandler(t *testing.T) {
	r, svc := newTestRouter(t)

	body := bytes.NewBufferString(`{"url":"https://example.com","alias":"my-link"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/shorten", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	owner := w.Result().Cookies()

	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/user/urls", bytes.NewBufferString(`["my-link"]`)), owner)
	require.Equal(t, http.StatusAccepted, w.Code)

	// The deletion is asynchronous.
	assert.Eventually(t, func() bool {
		rec, err := svc.Store.GetLinkByCode(context.Background(), "my-link")
		return err == nil && rec.DeletedAt != nil
	}, time.Second, 10*time.Millisecond)

	// Unauthenticated.
	w = do(r, httptest.NewRequest(http.MethodDelete, "/api/user/urls", bytes.NewBufferString(`["my-link"]`)), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndLoginHandlers(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"name":"Ann","email":"ann@example.com","password":"s3cret"}`)
	w := do(r, httptest.NewRequest(http.MethodPost, "/api/user/register", body), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)

	// Duplicate email.
	body = bytes.NewBufferString(`{"name":"Imposter","email":"ann@example.com","password":"x"}`)
	w = do(r, httptest.NewRequest(http.MethodPost, "/api/user/register", body), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login.
	body = bytes.NewBufferString(`{"email":"ann@example.com","password":"s3cret"}`)
	w = do(r, httptest.NewRequest(http.MethodPost, "/api/user/login", body), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body = bytes.NewBufferString(`{"email":"ann@example.com","password":"wrong"}`)
	w = do(r, httptest.NewRequest(http.MethodPost, "/api/user/login", body), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStatsHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("https://ya.ru")), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	req.Header.Set("X-Real-IP", "127.0.0.1")
	w = do(r, req, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.URLs)

	// Outside the trusted subnet.
	req = httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	w = do(r, req, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No client IP at all.
	w = do(r, httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func BenchmarkPostHandler(b *testing.B) {
	store, err := journal.NewStore(filepath.Join(b.TempDir(), "links.journal"))
	if err != nil {
		b.Fatalf("failed to open journal: %v", err)
	}

	svc := &app.ShortenerService{
		Store: store,
		Users: journal.NewUserStore(),
		Cfg:   &config.Config{BaseURL: "http://localhost:8080"},
	}
	handler := PostHandler(svc)

	requestBody := []byte("https://ya.ru")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(requestBody))
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")

		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != http.StatusCreated {
			b.Errorf("unexpected status code: %d", w.Code)
		}
	}
}

func BenchmarkGetHandler(b *testing.B) {
	store, err := journal.NewStore(filepath.Join(b.TempDir(), "links.journal"))
	if err != nil {
		b.Fatalf("failed to open journal: %v", err)
	}

	svc := &app.ShortenerService{
		Store: store,
		Users: journal.NewUserStore(),
		Cfg:   &config.Config{BaseURL: "http://localhost:8080"},
	}

	record, err := svc.CreateShortLink(context.Background(), "https://ya.ru", "", "")
	if err != nil {
		b.Fatalf("failed to create link: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/{code}", GetHandler(svc))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/"+record.ShortCode, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusTemporaryRedirect {
			b.Errorf("unexpected status code: %d", w.Code)
		}
	}
}
