// Package app holds the infrastructure shared by every bounded context.
package app

import (
	"github.com/gorilla/sessions"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/storage"
	"github.com/spicyjump/storefront/pkg/telemetry"
	"github.com/spicyjump/storefront/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Each context's services.New(a) builds its repositories and adapters from it.
//
// Logging: app.Logger is backed by a trace-aware handler. Use the context
// methods so trace_id, span_id and request_id are attached:
//
//	app.Logger.InfoContext(ctx, "order created", "order_id", id)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient
	Tokens   *auth.TokenIssuer
	Storage  *storage.Store
	Metrics  *telemetry.Metrics

	// TemporalClient is nil unless TEMPORAL_ENABLED is set.
	TemporalClient *workflows.TemporalClient
	// SessionStore backs admin console sessions; nil in the worker process.
	SessionStore sessions.Store
}
