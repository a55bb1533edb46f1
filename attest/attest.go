// Package attest abstracts platform device attestation. During
// registration the backend issues a nonce and expects a proof that the
// request comes from a genuine device; the proof mechanism differs per
// platform (SafetyNet on Android, DeviceCheck on iOS) and lives outside
// this module. The shell selects a Provider at startup instead of branching
// on the OS at call sites.
package attest

import (
	"context"
	"errors"
	"time"
)

// ErrNoProvider is returned when registration runs without a configured
// attestation provider.
var ErrNoProvider = errors.New("attest: no attestation provider configured")

// Payload is the device-verification proof submitted with the nonce.
type Payload struct {
	Platform                  string `json:"platform"`
	DeviceVerificationPayload string `json:"deviceVerificationPayload"`
	Timestamp                 int64  `json:"timestamp,omitempty"`
}

// Provider produces an attestation payload bound to a server-issued nonce.
type Provider interface {
	Verify(ctx context.Context, nonce string) (Payload, error)
}

// ProviderFunc adapts a function to the Provider interface. The platform
// shells wrap their native SafetyNet/DeviceCheck bridges with this.
type ProviderFunc func(ctx context.Context, nonce string) (Payload, error)

func (f ProviderFunc) Verify(ctx context.Context, nonce string) (Payload, error) {
	return f(ctx, nonce)
}

// StaticTokenProvider returns a fixed verification token. Only valid
// outside production, where the backend accepts the shared test token.
type StaticTokenProvider struct {
	Token string
}

func (p StaticTokenProvider) Verify(_ context.Context, _ string) (Payload, error) {
	return Payload{
		Platform:                  "test",
		DeviceVerificationPayload: p.Token,
		Timestamp:                 time.Now().UnixMilli(),
	}, nil
}

// None is a Provider that always fails; the default when nothing is
// configured, so a misconfigured production build fails loudly at
// registration rather than sending an empty proof.
type None struct{}

func (None) Verify(context.Context, string) (Payload, error) {
	return Payload{}, ErrNoProvider
}
