// Package ratelimit enforces per-route request budgets with a Redis fixed
// window counter shared by every API instance.
//
// Key format: "rate_limit:{type}:{identifier}:count". The first hit in a window
// sets the expiry. When Redis is unavailable requests are let through.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/logger"
)

// CodeExceeded is the business code of a 429 response.
const CodeExceeded = "RATE_LIMIT_EXCEEDED"

// Type selects what a budget is keyed on.
type Type string

const (
	ByIP     Type = "ip"
	ByUser   Type = "user"
	ByAPI    Type = "api"
	ByGlobal Type = "global"
)

// Rule is one budget: Limit requests per Window.
type Rule struct {
	Type   Type
	Limit  int64
	Window time.Duration
}

// Counter increments a window counter and reports its value and remaining TTL.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RedisCounter implements Counter with INCR and EXPIRE-on-first-hit.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter returns a Counter backed by client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Hit increments key. The window starts at the first hit.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, window, fmt.Errorf("expire %s: %w", key, err)
		}
		return n, window, nil
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return n, window, nil
	}
	if ttl < 0 {
		// The expiry was lost (e.g. a crash between INCR and EXPIRE); re-arm it.
		_ = c.client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return n, ttl, nil
}

// Limiter builds rate-limit middleware over a Counter.
type Limiter struct {
	counter Counter
	log     logger.Logger
}

// New returns a Limiter.
func New(counter Counter, log logger.Logger) *Limiter {
	return &Limiter{counter: counter, log: log}
}

// Middleware rejects requests over rule with 429 RATE_LIMIT_EXCEEDED and a
// Retry-After header.
func (l *Limiter) Middleware(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := Key(rule.Type, identifier(r, rule.Type))

			count, ttl, err := l.counter.Hit(r.Context(), key, rule.Window)
			if err != nil {
				l.log.WarnContext(r.Context(), "rate limit check failed, allowing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rule.Limit, 10))
			remaining := rule.Limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > rule.Limit {
				l.log.WarnContext(r.Context(), "rate limit exceeded", "key", key, "limit", rule.Limit, "window", rule.Window)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(ttl)))
				httpx.JSONErrorCode(w, http.StatusTooManyRequests, CodeExceeded, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Key builds the Redis key for t and id.
func Key(t Type, id string) string {
	return "rate_limit:" + string(t) + ":" + id + ":count"
}

func identifier(r *http.Request, t Type) string {
	switch t {
	case ByIP:
		return ClientIP(r)
	case ByUser:
		if p, err := auth.PrincipalFromCtx(r.Context()); err == nil {
			return p.UserID.String()
		}
		return "anonymous"
	case ByAPI:
		return r.URL.Path
	default:
		return "global"
	}
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(ttl time.Duration) int {
	s := int((ttl + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
