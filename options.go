package protect

// Functional options applied during construction in New. Kept in a
// standalone file so every available knob is discoverable at a glance.

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NES-Digital-Service/protect-scotland/attest"
)

// Option configures a Client during construction in New. Options must be
// deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client timeout. Prefer
// per-request context deadlines; this is a coarse safety net bounding a
// single HTTP exchange. Must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client wholesale. Overrides
// WithHTTPTimeout and WithPinnedCertificates if they were applied earlier.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is dumped
// to the log. Never enable in production: dumps include bearer tokens.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			base := c.http.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			c.http.Transport = &debugTransport{base: base}
		}
		return nil
	}
}

// WithPinnedCertificates enables certificate pinning against the given
// hex-encoded SHA-256 certificate fingerprints. Connections whose chains
// contain no pinned certificate fail with ErrCertificateNotPinned. An
// already-installed debug wrapper keeps wrapping the pinned transport,
// regardless of option order.
func WithPinnedCertificates(fingerprints []string) Option {
	return func(c *Client) error {
		tr, err := newPinnedTransport(fingerprints)
		if err != nil {
			return err
		}
		if dbg, ok := c.http.Transport.(*debugTransport); ok {
			dbg.base = tr
			return nil
		}
		c.http.Transport = tr
		return nil
	}
}

// WithNavigator injects the UI navigation signal used when the refresh
// token is rejected and the user must re-onboard.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) error {
		c.nav = nav
		return nil
	}
}

// WithAttestationProvider selects the device-attestation capability used
// during registration and notice creation.
func WithAttestationProvider(p attest.Provider) Option {
	return func(c *Client) error {
		if p == nil {
			return fmt.Errorf("attestation provider must not be nil")
		}
		c.attest = p
		return nil
	}
}

// WithConnectivityProbe replaces the reachability check run before every
// request. The default dials the API host over TCP.
func WithConnectivityProbe(probe func(context.Context) error) Option {
	return func(c *Client) error {
		if probe == nil {
			return fmt.Errorf("connectivity probe must not be nil")
		}
		c.probe = probe
		return nil
	}
}

// WithRetryBaseDelay sets the initial backoff interval used by
// RequestRetry. The production default is 2 s; tests shrink it.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("retry base delay must be > 0")
		}
		c.retryBaseDelay = d
		return nil
	}
}

// WithProbeRetryDelay sets the pause before the connectivity gate's single
// re-probe. The production default is 1 s; tests shrink it.
func WithProbeRetryDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("probe retry delay must be > 0")
		}
		c.probeRetryDelay = d
		return nil
	}
}

// WithAppVersion sets the build version reported in metric events.
func WithAppVersion(v string) Option {
	return func(c *Client) error {
		c.appVersion = v
		return nil
	}
}

// WithPlatform sets the platform name reported in metric events.
func WithPlatform(p string) Option {
	return func(c *Client) error {
		c.platform = p
		return nil
	}
}
