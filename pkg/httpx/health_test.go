package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spicyjump/storefront/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

// hangingChecker blocks until the probe deadline.
type hangingChecker struct{}

func (hangingChecker) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func probe(t *testing.T, checks httpx.HealthChecks) (int, httpx.HealthResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var resp httpx.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, resp
}

func healthy() httpx.HealthChecks {
	return httpx.HealthChecks{Database: &stubChecker{}, Redis: &stubChecker{}, EventBus: &stubChecker{}}
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	code, resp := probe(t, healthy())

	if code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("got %d %+v", code, resp)
	}
	if len(resp.Checks) != 3 {
		t.Errorf("optional checks reported while unset: %v", resp.Checks)
	}
}

func TestHealthHandler_OneDependencyDown(t *testing.T) {
	down := &stubChecker{err: errors.New("conn refused")}
	tests := []struct {
		name  string
		edit  func(*httpx.HealthChecks)
		check string
	}{
		{"database", func(c *httpx.HealthChecks) { c.Database = down }, "database"},
		{"redis", func(c *httpx.HealthChecks) { c.Redis = down }, "redis"},
		{"event bus", func(c *httpx.HealthChecks) { c.EventBus = down }, "event_bus"},
		{"storage", func(c *httpx.HealthChecks) { c.Storage = down }, "storage"},
		{"temporal", func(c *httpx.HealthChecks) { c.Temporal = down }, "temporal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := healthy()
			tt.edit(&checks)
			code, resp := probe(t, checks)

			if code != http.StatusServiceUnavailable || resp.Status != "degraded" {
				t.Fatalf("got %d %+v", code, resp)
			}
			if resp.Checks[tt.check] != "unreachable" {
				t.Errorf("%s = %q", tt.check, resp.Checks[tt.check])
			}
			for name, state := range resp.Checks {
				if name != tt.check && state != "ok" {
					t.Errorf("%s = %q, want ok", name, state)
				}
			}
		})
	}
}

func TestHealthHandler_SlowDependencyTimesOut(t *testing.T) {
	checks := healthy()
	checks.Storage = hangingChecker{}

	start := time.Now()
	code, resp := probe(t, checks)

	if code != http.StatusServiceUnavailable || resp.Checks["storage"] != "unreachable" {
		t.Fatalf("got %d %+v", code, resp)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("probe took %s", elapsed)
	}
}
