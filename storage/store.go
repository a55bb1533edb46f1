// Package storage defines the key-value store the client uses for tokens,
// consent flags and cached responses. The mobile shell supplies its own
// secure-storage implementation; Memory and SQLite cover tests and
// standalone use.
package storage

import (
	"context"
	"errors"
)

// Well-known keys written by the client.
const (
	KeyToken            = "token"
	KeyRefreshToken     = "refreshToken"
	KeyAnalyticsConsent = "analyticsConsent"
	KeyNoticeCertKey    = "createNoticeCertKey"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is a sequentially-accessed key-value store. Implementations must be
// safe for concurrent use; values are opaque strings.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
