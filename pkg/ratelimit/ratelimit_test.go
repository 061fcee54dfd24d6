package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
)

// memCounter is an in-process Counter for tests.
type memCounter struct {
	counts map[string]int64
	keys   []string
	err    error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}}
}

func (m *memCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.keys = append(m.keys, key)
	m.counts[key]++
	return m.counts[key], window, nil
}

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_BlocksOverLimit(t *testing.T) {
	counter := newMemCounter()
	h := New(counter, nopLogger()).Middleware(Rule{Type: ByIP, Limit: 2, Window: 30 * time.Second})(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, w.Code)
		}
		if want == http.StatusTooManyRequests {
			if got := w.Header().Get("Retry-After"); got != "30" {
				t.Errorf("Retry-After = %q, want 30", got)
			}
			if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
				t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
			}
		}
	}
	if counter.keys[0] != "rate_limit:ip:10.0.0.1:count" {
		t.Errorf("unexpected key %q", counter.keys[0])
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	counter := &memCounter{err: errors.New("redis down")}
	h := New(counter, nopLogger()).Middleware(Rule{Type: ByGlobal, Limit: 1, Window: time.Minute})(okHandler())

	for range 3 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 while Redis is down, got %d", w.Code)
		}
	}
}

func TestIdentifier(t *testing.T) {
	user := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	r.RemoteAddr = "192.168.1.9:1234"
	authed := r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: user, Role: auth.RoleBuyer}))

	tests := []struct {
		name string
		req  *http.Request
		typ  Type
		want string
	}{
		{"ip", r, ByIP, "192.168.1.9"},
		{"user", authed, ByUser, user.String()},
		{"anonymous user", r, ByUser, "anonymous"},
		{"api", r, ByAPI, "/api/orders/my"},
		{"global", r, ByGlobal, "global"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := identifier(tt.req, tt.typ); got != tt.want {
				t.Errorf("identifier = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "198.51.100.2", "10.0.0.1:80", "203.0.113.7"},
		{"real ip", "", "198.51.100.2", "10.0.0.1:80", "198.51.100.2"},
		{"remote addr", "", "", "10.0.0.1:80", "10.0.0.1"},
		{"remote without port", "", "", "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	if got := retryAfterSeconds(0); got != 1 {
		t.Errorf("expected minimum of 1, got %d", got)
	}
	if got := retryAfterSeconds(1500 * time.Millisecond); got != 2 {
		t.Errorf("expected rounding up to 2, got %d", got)
	}
}
