package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memoryLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{counts: map[string]int64{}}
}

func (m *memoryLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if m.err != nil {
		return false, 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

func serveAs(handler http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if userID != "" {
		req = req.WithContext(WithUserID(req.Context(), userID))
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	store := newMemoryLimiter()
	handler := RateLimit(NewRateLimitPolicy("session", time.Minute, 2), store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		if resp := serveAs(handler, "user-1"); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.Code)
		}
	}
	resp := serveAs(handler, "user-1")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After 60 got %q", got)
	}

	if resp := serveAs(handler, "user-2"); resp.Code != http.StatusOK {
		t.Fatalf("other user: expected 200 got %d", resp.Code)
	}
	if _, ok := store.counts["session:user:user-1"]; !ok {
		t.Fatalf("expected user scoped key, got %v", store.counts)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	store := newMemoryLimiter()
	handler := RateLimit(NewRateLimitPolicy("session", time.Minute, 1), store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if store.counts["session:ip:203.0.113.7"] != 1 {
		t.Fatalf("expected ip scoped key, got %v", store.counts)
	}
}

func TestRateLimitStoreFailure(t *testing.T) {
	store := newMemoryLimiter()
	store.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("session", time.Minute, 1), store, nil)(okHandler())

	if resp := serveAs(handler, "user-1"); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newMemoryLimiter()
	handler := RateLimit(NewRateLimitPolicy("session", 0, 0), store, nil)(okHandler())

	if resp := serveAs(handler, "user-1"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(store.counts) != 0 {
		t.Fatalf("expected no counting, got %v", store.counts)
	}
}
