// Package protect is the Go client SDK for the contact-tracing backend
// API. It wraps plain HTTP with a connectivity pre-check, bearer-token
// authentication with transparent refresh on 401, bounded
// exponential-backoff retries for idempotent reads, optional certificate
// pinning, and a best-effort response cache.
package protect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/NES-Digital-Service/protect-scotland/attest"
	"github.com/NES-Digital-Service/protect-scotland/internal/api"
	"github.com/NES-Digital-Service/protect-scotland/storage"
)

const (
	defaultHTTPTimeout     = 30 * time.Second
	defaultRetryBaseDelay  = 2 * time.Second
	defaultProbeRetryDelay = 1 * time.Second
	probeDialTimeout       = 5 * time.Second
)

// Client performs HTTP calls against the backend API. All methods are safe
// for concurrent use; token refresh is single-flight guarded so two
// simultaneous 401s cannot each mint a token.
type Client struct {
	baseURL string
	http    *http.Client
	store   storage.Store
	attest  attest.Provider
	nav     Navigator

	probe           func(context.Context) error
	probeRetryDelay time.Duration
	retryBaseDelay  time.Duration

	platform   string
	appVersion string

	refreshMu sync.Mutex
}

// Compile-time check that Client satisfies the api layer's contract.
var _ api.Doer = (*Client)(nil)

// New constructs a Client for the given API base URL, persisting tokens
// and cached responses in store.
func New(baseURL string, store storage.Store, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{Timeout: defaultHTTPTimeout},
		store:           store,
		attest:          attest.None{},
		probeRetryDelay: defaultProbeRetryDelay,
		retryBaseDelay:  defaultRetryBaseDelay,
		platform:        "test",
		appVersion:      "dev",
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.probe == nil {
		c.probe = dialProbe(c.baseURL)
	}
	return c, nil
}

// Request performs one HTTP exchange. It gates on connectivity, injects
// the stored bearer token when cfg.Authorized, and on a 401 refreshes the
// token and retries exactly once. A second 401 is returned to the caller
// as-is; the client never loops on repeated 401s.
func (c *Client) Request(ctx context.Context, reqURL string, cfg api.Config) (*http.Response, error) {
	if err := c.connected(ctx); err != nil {
		return nil, err
	}

	var token string
	if cfg.Authorized {
		token, _ = c.store.Get(ctx, storage.KeyToken)
		if token == "" {
			token = c.createToken(ctx, "")
		}
	}

	resp, err := c.send(ctx, reqURL, cfg, token)
	if err != nil {
		return nil, err
	}

	if cfg.Authorized && resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		// Expired access token: refresh once and re-issue with the new
		// credential. The refresh itself may fail and yield an empty
		// token, in which case the retried call fails server-side and
		// that failure is the caller's answer.
		newToken := c.createToken(ctx, token)
		return c.send(ctx, reqURL, cfg, newToken)
	}
	return resp, nil
}

// RequestRetry wraps Request in exponential backoff: initial interval
// retryBaseDelay (2 s by default), multiplier 2, up to maxAttempts tries.
// Only for idempotent reads; mutating calls must not be retried. Transport
// errors and 5xx/408/429 statuses are retried; any other response is
// returned immediately.
func (c *Client) RequestRetry(ctx context.Context, reqURL string, cfg api.Config, maxAttempts int) (*http.Response, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryBaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = 5 * time.Minute
	exp.MaxElapsedTime = 0

	var resp *http.Response
	attempt := 0
	operation := func() error {
		if attempt > 0 {
			retryAttemptsTotal.Inc()
		}
		attempt++

		r, err := c.Request(ctx, reqURL, cfg)
		if err != nil {
			return err
		}
		if retryableStatus(r.StatusCode) {
			drain(r)
			return fmt.Errorf("request %s: status %d", reqURL, r.StatusCode)
		}
		resp = r
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(exp, uint64(maxAttempts-1)), ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// send issues a single HTTP call with the given bearer token, without any
// recovery logic.
func (c *Client) send(ctx context.Context, reqURL string, cfg api.Config, token string) (*http.Response, error) {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(cfg.Body) > 0 {
		body = bytes.NewReader(cfg.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range cfg.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if cfg.Authorized {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, err
	}
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// connected checks network reachability. On failure it waits
// probeRetryDelay and probes exactly once more; a second failure yields
// ErrNetworkUnavailable. The single re-probe is a deliberate bound.
func (c *Client) connected(ctx context.Context) error {
	if err := c.probe(ctx); err == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.probeRetryDelay):
	}
	if err := c.probe(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}
	return nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// dialProbe returns the default reachability check: a TCP dial to the API
// host.
func dialProbe(baseURL string) func(context.Context) error {
	return func(ctx context.Context) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return err
		}
		host := u.Host
		if u.Port() == "" {
			switch u.Scheme {
			case "https":
				host = net.JoinHostPort(u.Hostname(), "443")
			default:
				host = net.JoinHostPort(u.Hostname(), "80")
			}
		}
		d := net.Dialer{Timeout: probeDialTimeout}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
