// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/yunseo/gabiad/internal/log"
)

// errorResponse is the JSON error envelope for every non-2xx answer.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"` // upstream result code, when known
}

// Stable error identifiers.
const (
	errInvalidRequest      = "invalid_request"
	errUnauthorized        = "unauthorized"
	errNotFound            = "not_found"
	errRateLimited         = "rate_limit_exceeded"
	errUpstreamRejected    = "upstream_rejected"
	errUpstreamUnavailable = "upstream_unavailable"
	errInternal            = "internal_error"
)

// respondError writes the JSON error envelope with the given status.
func respondError(w http.ResponseWriter, r *http.Request, status int, id, detail string) {
	respondErrorCode(w, r, status, id, detail, "")
}

func respondErrorCode(w http.ResponseWriter, r *http.Request, status int, id, detail, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: id, Detail: detail, Code: code}); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str("event", "api.encode_error").Msg("failed to encode error response")
	}
}

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str("event", "api.encode_error").Msg("failed to encode response")
	}
}
