package app

import (
	"crypto/rand"
	"net/url"
	"regexp"
	"strings"
)

// slugAlphabet is the 62-symbol alphabet random slugs are drawn from.
const slugAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// slugLength is the fixed length of generated slugs.
const slugLength = 6

// aliasPattern matches a normalized alias: 3 to 30 characters of
// lowercase letters, digits, underscore and hyphen.
var aliasPattern = regexp.MustCompile(`^[a-z0-9_-]{3,30}$`)

// generateSlug is a helper function to generate a short code.
// It returns a 6-character string drawn from the slug alphabet using a
// cryptographically secure random source. Reducing each byte modulo the
// alphabet length skews the distribution slightly; tolerable here.
func generateSlug() string {
	b := make([]byte, slugLength)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}

	slug := make([]byte, slugLength)
	for i, v := range b {
		slug[i] = slugAlphabet[int(v)%len(slugAlphabet)]
	}
	return string(slug)
}

// normalizeAlias lowercases a user-chosen alias and validates it against
// the alias format. It returns the normalized alias or ErrInvalidAlias.
func normalizeAlias(raw string) (string, error) {
	normalized := strings.ToLower(raw)
	if !aliasPattern.MatchString(normalized) {
		return "", ErrInvalidAlias
	}
	return normalized, nil
}

// isValidURL reports whether raw parses as an absolute URL with an http
// or https scheme.
func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
