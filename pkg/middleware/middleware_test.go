package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nthung-2k5/eventsphere/internal/cache"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

func TestRequestIDPropagates(t *testing.T) {
	var seen interface{}
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(logger.RequestIDKey)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" {
		t.Errorf("context request id = %v", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("header = %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestHealth(t *testing.T) {
	called := false
	h := Health(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
	if called {
		t.Error("healthz should short-circuit")
	}
}

// bearerScope scopes replays to the raw Authorization header.
func bearerScope(r *http.Request) string { return r.Header.Get("Authorization") }

func TestIdempotencyReplaysSuccess(t *testing.T) {
	calls := 0
	h := IdempotencyMiddleware(cache.NewMemory(), time.Hour, bearerScope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))

	post := func(key, auth, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/organizer/events", strings.NewReader(body))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := post("k1", "Bearer a", `{"id":1}`)
	second := post("k1", "Bearer a", `{"id":1}`)
	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != `{"id":1}` {
		t.Errorf("replay = %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" || first.Header().Get("Idempotent-Replayed") != "" {
		t.Error("replay header misplaced")
	}

	post("k1", "Bearer b", `{"id":1}`)
	post("", "Bearer a", `{"id":1}`)
	if calls != 3 {
		t.Errorf("handler calls = %d, want 3", calls)
	}

	other := post("k1", "Bearer a", `{"id":2}`)
	if calls != 4 || other.Body.String() != `{"id":2}` {
		t.Errorf("different body replayed: calls = %d body = %s", calls, other.Body.String())
	}
}

func TestIdempotencyNeedsScope(t *testing.T) {
	calls := 0
	h := IdempotencyMiddleware(cache.NewMemory(), time.Hour, bearerScope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "k1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("anonymous requests must not be replayed, calls = %d", calls)
	}
}

func TestIdempotencySkipsFailures(t *testing.T) {
	calls := 0
	h := IdempotencyMiddleware(cache.NewMemory(), time.Hour, bearerScope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	}))
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Idempotency-Key", "same")
		req.Header.Set("Authorization", "Bearer a")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Errorf("failed responses must not be replayed, calls = %d", calls)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/v1/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}
