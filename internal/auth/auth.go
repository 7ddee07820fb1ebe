// Package auth checks the bearer token internal callers present.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

// CredentialSource returns the expected token, false when none is configured.
type CredentialSource interface {
	Credentials() (string, bool)
}

// Authorizer compares the Authorization header against the configured
// credential.
type Authorizer struct {
	source CredentialSource
	log    zerolog.Logger
}

// New returns an Authorizer backed by source.
func New(source CredentialSource, log zerolog.Logger) *Authorizer {
	return &Authorizer{source: source, log: log.With().Str("component", "auth").Logger()}
}

// Authorize reports whether r carries the configured bearer token. A missing
// credential denies every request.
func (a *Authorizer) Authorize(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		a.log.Debug().Str("remote", r.RemoteAddr).Msg("missing bearer token")
		return false
	}
	token := header[len(bearerPrefix):]

	want, ok := a.source.Credentials()
	if !ok {
		a.log.Error().Msg("CREDENTIALS is not configured; rejecting request")
		return false
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(want)) != 1 {
		a.log.Warn().Str("remote", r.RemoteAddr).Msg("invalid bearer token")
		return false
	}
	return true
}
