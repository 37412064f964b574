package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJWTString(t *testing.T) {
	token, userID, err := BuildJWTString("")
	require.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.Equal(t, userID, GetUserID(token))

	token, userID, err = BuildJWTString("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "u1", GetUserID(token))
}

func TestGetUserIDInvalidToken(t *testing.T) {
	assert.Empty(t, GetUserID(""))
	assert.Empty(t, GetUserID("not-a-token"))

	// A token signed with a different secret is rejected.
	SetSecret("first-secret")
	token, _, err := BuildJWTString("u1")
	require.NoError(t, err)

	SetSecret("second-secret")
	assert.Empty(t, GetUserID(token))

	SetSecret("supersecretkey")
}

func TestEnsureUser(t *testing.T) {
	// Without a cookie a fresh identity is minted and set on the
	// response.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	userID, err := EnsureUser(w, r)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, userID, GetUserID(cookies[0].Value))

	// With the cookie the same identity is reused and no new cookie
	// is written.
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/", nil)
	r2.AddCookie(cookies[0])

	again, err := EnsureUser(w2, r2)
	require.NoError(t, err)
	assert.Equal(t, userID, again)
	assert.Empty(t, w2.Result().Cookies())
}

func TestCurrentUser(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, CurrentUser(r))

	token, userID, err := BuildJWTString("")
	require.NoError(t, err)

	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	assert.Equal(t, userID, CurrentUser(r))
}
