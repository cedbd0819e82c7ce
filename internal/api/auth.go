// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/yunseo/gabiad/internal/log"
)

// extractToken pulls the API token from the X-API-Token header or an
// Authorization: Bearer header. Query parameters are deliberately not
// accepted: they leak into access logs.
func extractToken(r *http.Request) string {
	if t := r.Header.Get("X-API-Token"); t != "" {
		return t
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// authorizeToken compares tokens in constant time.
func authorizeToken(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// authMiddleware enforces API token authentication. With no token configured
// the API fails closed.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.WithComponentFromContext(r.Context(), "auth")

		if s.cfg.APIToken == "" {
			logger.Error().
				Str(log.FieldEvent, "auth.fail_closed").
				Msg("GABIAD_API_TOKEN not set, denying access")
			respondError(w, r, http.StatusUnauthorized, errUnauthorized, "API token not configured")
			return
		}

		token := extractToken(r)
		if token == "" {
			logger.Warn().
				Str(log.FieldEvent, "auth.missing_token").
				Msg("authorization header missing")
			respondError(w, r, http.StatusUnauthorized, errUnauthorized, "missing API token")
			return
		}

		if !authorizeToken(token, s.cfg.APIToken) {
			logger.Warn().
				Str(log.FieldEvent, "auth.invalid_token").
				Msg("invalid api token")
			respondError(w, r, http.StatusUnauthorized, errUnauthorized, "invalid API token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
