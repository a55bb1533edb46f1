package protect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NES-Digital-Service/protect-scotland/storage"
)

// newTestClient builds a client against a test server with the
// connectivity probe stubbed out and short retry delays.
func newTestClient(t *testing.T, baseURL string, store storage.Store, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithConnectivityProbe(func(context.Context) error { return nil }),
		WithRetryBaseDelay(5 * time.Millisecond),
		WithProbeRetryDelay(5 * time.Millisecond),
	}
	c, err := New(baseURL, store, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", storage.NewMemory()); err == nil {
		t.Fatalf("expected error for empty baseURL")
	}
	if _, err := New("http://example.com", nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	c, err := New("http://example.com/", storage.NewMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.baseURL != "http://example.com" {
		t.Fatalf("trailing slash not trimmed: %q", c.baseURL)
	}
}

func TestNew_OptionErrors(t *testing.T) {
	s := storage.NewMemory()
	if _, err := New("http://example.com", s, WithHTTPTimeout(0)); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
	if _, err := New("http://example.com", s, WithAttestationProvider(nil)); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	if _, err := New("http://example.com", s, WithPinnedCertificates(nil)); err == nil {
		t.Fatalf("expected error for empty fingerprint set")
	}
	if _, err := New("http://example.com", s, WithPinnedCertificates([]string{"zz"})); err == nil {
		t.Fatalf("expected error for malformed fingerprint")
	}
}

func TestConnected_SingleRetryThenFail(t *testing.T) {
	probes := 0
	c := newTestClient(t, "http://unreachable.invalid", storage.NewMemory(),
		WithConnectivityProbe(func(context.Context) error {
			probes++
			return errors.New("offline")
		}))

	_, err := c.Request(context.Background(), "http://unreachable.invalid/x", RequestConfig{})
	if !IsNetworkUnavailable(err) {
		t.Fatalf("want ErrNetworkUnavailable, got %v", err)
	}
	if probes != 2 {
		t.Fatalf("want exactly 2 probes, got %d", probes)
	}
}

func TestConnected_RecoversOnSecondProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	probes := 0
	store := storage.NewMemory()
	c := newTestClient(t, srv.URL, store,
		WithConnectivityProbe(func(context.Context) error {
			probes++
			if probes == 1 {
				return errors.New("offline")
			}
			return nil
		}))

	resp, err := c.Request(context.Background(), srv.URL+"/x", RequestConfig{})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestRequest_SetsRequestID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory())
	resp, err := c.Request(context.Background(), srv.URL+"/x", RequestConfig{Method: http.MethodGet})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	drain(resp)
	if gotID == "" {
		t.Fatalf("expected X-Request-Id header")
	}
}

func TestRequest_UnauthorizedCallNeverRefreshes(t *testing.T) {
	refreshes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes++
	})
	mux.HandleFunc("/open", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory())
	resp, err := c.Request(context.Background(), srv.URL+"/open", RequestConfig{Method: http.MethodGet})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if refreshes != 0 {
		t.Fatalf("unauthorized request must not trigger refresh, got %d", refreshes)
	}
}
