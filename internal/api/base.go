// Package api implements the per-endpoint HTTP calls against the backend.
// Functions here are thin: they build requests, check statuses and decode
// bodies. Connectivity gating, bearer injection and 401 refresh-and-retry
// all live in the Doer the root package supplies.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Config describes a single HTTP exchange. Body is a byte slice rather
// than a reader so the authorized pipeline can re-send it after a token
// refresh.
type Config struct {
	Method string
	Header http.Header
	Body   []byte

	// Authorized requests carry a bearer access token and recover from a
	// single 401 via token refresh.
	Authorized bool
}

// Doer performs an HTTP exchange with connectivity and auth handling.
// Implemented by the root Client.
type Doer interface {
	Request(ctx context.Context, url string, cfg Config) (*http.Response, error)
	RequestRetry(ctx context.Context, url string, cfg Config, maxAttempts int) (*http.Response, error)
}

// HTTPError is a non-2xx response surfaced to the caller. The body is kept
// so callers can inspect server-reported messages (e.g. clock skew during
// registration).
type HTTPError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// ServerMessage returns the "message" field of a JSON error body, or "".
func (e *HTTPError) ServerMessage() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}

// emptyJSONBody is the canonical empty object the backend expects on
// bodied endpoints that need no parameters.
var emptyJSONBody = []byte("{}")
