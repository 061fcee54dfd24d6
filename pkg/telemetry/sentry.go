package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/spicyjump/storefront/pkg/config"
)

// sensitiveHeaders never leave the process: bearer and refresh tokens, the
// admin session cookie and provider webhook signatures.
var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Refresh-Token",
	"Stripe-Signature",
}

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: tracesSampleRate(cfg),
		SendDefaultPII:   false,
		BeforeSend:       scrubEvent,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func tracesSampleRate(cfg *config.Config) float64 {
	if cfg.IsProduction() {
		return 0.1
	}
	return 1.0
}

// scrubEvent drops credentials from the captured request.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	for _, h := range sensitiveHeaders {
		for k := range event.Request.Headers {
			if http.CanonicalHeaderKey(k) == h {
				event.Request.Headers[k] = "[redacted]"
			}
		}
	}
	event.Request.Cookies = ""
	event.Request.Data = ""
	return event
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware captures panics and re-panics so logger.Recovery still
// writes the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second})
	return h.Handle
}
