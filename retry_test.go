package protect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NES-Digital-Service/protect-scotland/storage"
)

func TestRequestRetry_FailTwiceThenSucceed(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory(), WithRetryBaseDelay(10*time.Millisecond))

	start := time.Now()
	resp, err := c.RequestRetry(context.Background(), srv.URL+"/x", RequestConfig{Method: http.MethodGet}, 3)
	if err != nil {
		t.Fatalf("RequestRetry: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if hits != 3 {
		t.Fatalf("want 3 attempts, got %d", hits)
	}
	// Backoff waits 10ms then 20ms between attempts.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("backoff delays not applied, elapsed %v", elapsed)
	}
}

func TestRequestRetry_ExhaustedPropagatesLastError(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory())
	_, err := c.RequestRetry(context.Background(), srv.URL+"/x", RequestConfig{Method: http.MethodGet}, 3)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if hits != 3 {
		t.Fatalf("want 3 attempts, got %d", hits)
	}
}

func TestRequestRetry_NonRetryableStatusReturnsImmediately(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory())
	resp, err := c.RequestRetry(context.Background(), srv.URL+"/x", RequestConfig{Method: http.MethodGet}, 3)
	if err != nil {
		t.Fatalf("RequestRetry: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if hits != 1 {
		t.Fatalf("404 must not be retried, got %d attempts", hits)
	}
}

func TestRequestRetry_ContextCancelStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, storage.NewMemory(), WithRetryBaseDelay(50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.RequestRetry(ctx, srv.URL+"/x", RequestConfig{Method: http.MethodGet}, 10)
	if err == nil {
		t.Fatalf("expected error when context expires mid-backoff")
	}
}
