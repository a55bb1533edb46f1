package protect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/NES-Digital-Service/protect-scotland/storage"
)

type fakeNavigator struct {
	mu     sync.Mutex
	route  string
	resets int
}

func (n *fakeNavigator) CurrentRoute() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

func (n *fakeNavigator) ResetToOnboarding() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets++
	n.route = RouteOnboarding
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// Server that accepts only "new" tokens and rotates "rt" to "new".
func newRefreshingServer(t *testing.T, refreshes *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != "rt" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		atomic.AddInt32(refreshes, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "new"})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != "new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"installs": []any{}})
	})
	return httptest.NewServer(mux)
}

func TestRequest_RefreshAndRetryOn401(t *testing.T) {
	var refreshes int32
	srv := newRefreshingServer(t, &refreshes)
	defer srv.Close()

	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Set(ctx, storage.KeyToken, "expired")
	_ = store.Set(ctx, storage.KeyRefreshToken, "rt")

	c := newTestClient(t, srv.URL, store)
	resp, err := c.Request(ctx, srv.URL+"/stats", RequestConfig{Method: http.MethodGet, Authorized: true})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 after refresh-and-retry, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&refreshes); n != 1 {
		t.Fatalf("want exactly one refresh, got %d", n)
	}

	tok, err := store.Get(ctx, storage.KeyToken)
	if err != nil || tok != "new" {
		t.Fatalf("rotated token not persisted: %q %v", tok, err)
	}
}

func TestRequest_MissingTokenRefreshesBeforeCall(t *testing.T) {
	var refreshes int32
	srv := newRefreshingServer(t, &refreshes)
	defer srv.Close()

	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Set(ctx, storage.KeyRefreshToken, "rt")

	c := newTestClient(t, srv.URL, store)
	resp, err := c.Request(ctx, srv.URL+"/stats", RequestConfig{Method: http.MethodGet, Authorized: true})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&refreshes); n != 1 {
		t.Fatalf("want exactly one refresh, got %d", n)
	}
}

func TestRequest_DoubleUnauthorizedSurfacesSecondFailure(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Set(ctx, storage.KeyToken, "expired")
	_ = store.Set(ctx, storage.KeyRefreshToken, "dead")

	nav := &fakeNavigator{route: "dashboard"}
	c := newTestClient(t, srv.URL, store, WithNavigator(nav))

	resp, err := c.Request(ctx, srv.URL+"/stats", RequestConfig{Method: http.MethodGet, Authorized: true})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	drain(resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want the second 401 surfaced, got %d", resp.StatusCode)
	}
	if hits != 2 {
		t.Fatalf("want exactly 2 attempts (no 401 loop), got %d", hits)
	}
	if nav.resets != 1 {
		t.Fatalf("want one onboarding reset, got %d", nav.resets)
	}
}

func TestCreateToken_NavigatorSignalIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	nav := &fakeNavigator{route: RouteOnboarding}
	c := newTestClient(t, srv.URL, storage.NewMemory(), WithNavigator(nav))

	if tok := c.createToken(ctx, ""); tok != "" {
		t.Fatalf("want empty token on refresh failure, got %q", tok)
	}
	if nav.resets != 0 {
		t.Fatalf("already onboarding, reset must be skipped; got %d", nav.resets)
	}
}

func TestCreateToken_SingleFlight(t *testing.T) {
	var refreshes int32
	srv := newRefreshingServer(t, &refreshes)
	defer srv.Close()

	ctx := context.Background()
	store := storage.NewMemory()
	_ = store.Set(ctx, storage.KeyToken, "expired")
	_ = store.Set(ctx, storage.KeyRefreshToken, "rt")

	c := newTestClient(t, srv.URL, store)

	// Two goroutines hit 401 with the same stale token; only one rotation
	// may reach the backend.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tok := c.createToken(ctx, "expired"); tok != "new" {
				t.Errorf("createToken = %q, want new", tok)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&refreshes); n != 1 {
		t.Fatalf("want exactly one refresh across concurrent callers, got %d", n)
	}
}
