package api

import (
	"errors"
	"fmt"
)

// Error is the structured error body the backend returns on non-2xx
// responses: {"detail": "...", "status_code": 422, "type": "..."}.
// When the body carries no detail, call sites substitute their own
// per-operation fallback message via Detail().
type Error struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
	Type       string `json:"type"`
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status=%d detail=%s", e.StatusCode, e.Detail)
}

// ErrorTypes the client itself produces (not server-sent).
const (
	TypeTransport   = "transport"    // Network-level failure, no HTTP response
	TypeCircuitOpen = "circuit_open" // Breaker rejected the call before sending
)

// Detail extracts a human-readable message from any error, preferring the
// server-provided detail and falling back to the given generic message.
func Detail(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// AsError unwraps err to a *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
