// Package auth provides authentication utilities using JSON Web Tokens (JWT).
// Tokens travel in an HTTP-only cookie; the rest of the application only
// ever sees the resolved user ID or its absence.
package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims defines the structure of JWT claims used in the authentication process.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the unique ID of the user.
	UserID string
}

// TokenExp specifies the duration for which a JWT token is valid.
// Tokens expire 3 hours after issuance.
const TokenExp = time.Hour * 3

// CookieName is the name of the cookie carrying the token.
const CookieName = "auth"

// secretKey signs tokens. Overridden from configuration at startup.
var secretKey = []byte("supersecretkey")

// SetSecret replaces the token signing secret.
func SetSecret(secret string) {
	if secret != "" {
		secretKey = []byte(secret)
	}
}

// BuildJWTString creates a signed JWT token string for a given userID.
// If userID is empty, a fresh UUID is minted for the user. It returns
// the signed token together with the user ID it covers.
func BuildJWTString(userID string) (string, string, error) {
	if userID == "" {
		userID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", "", err
	}

	return tokenString, userID, nil
}

// GetUserID extracts the UserID from a given JWT token string.
// It parses the token, validates its signature and expiration, and
// retrieves the UserID claim. An invalid or expired token yields an
// empty string.
func GetUserID(tokenString string) string {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	return claims.UserID
}

// SetAuthCookie writes the token into the response as an HTTP-only cookie.
func SetAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(TokenExp),
		HttpOnly: true,
	})
}

// EnsureUser resolves the user ID for a request that is allowed to mint
// a fresh identity. A valid cookie is reused; otherwise a new token is
// issued and set on the response. The returned ID is never empty.
func EnsureUser(w http.ResponseWriter, r *http.Request) (string, error) {
	if userID := CurrentUser(r); userID != "" {
		return userID, nil
	}

	token, userID, err := BuildJWTString("")
	if err != nil {
		return "", err
	}

	SetAuthCookie(w, token)
	return userID, nil
}

// CurrentUser returns the user ID carried by the request cookie, or an
// empty string when the request is anonymous or the token is invalid.
func CurrentUser(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}

	return GetUserID(cookie.Value)
}
