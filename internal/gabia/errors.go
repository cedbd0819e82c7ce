// SPDX-License-Identifier: MIT

package gabia

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrUnavailable = errors.New("gabia: host unreachable or transport failure")
	ErrTimeout     = errors.New("gabia: request timed out")
	ErrBadResponse = errors.New("gabia: invalid response format or malformed data")
	ErrRejected    = errors.New("gabia: request rejected by upstream")
	ErrCircuitOpen = errors.New("gabia: circuit breaker is open")
)

// APIError is a rich error type that wraps the sentinel errors with context.
type APIError struct {
	Sentinel  error
	Operation string
	Code      string // upstream result code, when one was received
	Body      string
	Err       error // nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("gabia: %s: %v", e.Operation, e.Sentinel)
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}
