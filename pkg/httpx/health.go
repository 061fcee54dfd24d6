package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

// HealthChecker is anything with a Ping: the database pool, Redis, the event
// bus, object storage and the Temporal client all qualify.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies /health probes. Database, Redis and
// EventBus are required. Storage and Temporal are optional and skipped when
// nil, since both can be switched off by config.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
	Storage  HealthChecker
	Temporal HealthChecker
}

func (c HealthChecks) named() map[string]HealthChecker {
	out := map[string]HealthChecker{
		"database":  c.Database,
		"redis":     c.Redis,
		"event_bus": c.EventBus,
	}
	if c.Storage != nil {
		out["storage"] = c.Storage
	}
	if c.Temporal != nil {
		out["temporal"] = c.Temporal
	}
	return out
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
} // @name HealthResponse

// HealthHandler probes every dependency concurrently under one deadline and
// answers 503 when any of them fails.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	named := checks.named()
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(named))}
		var mu sync.Mutex
		var g errgroup.Group
		for name, c := range named {
			g.Go(func() error {
				state := "ok"
				if err := c.Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				resp.Checks[name] = state
				if state != "ok" {
					resp.Status = "degraded"
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
