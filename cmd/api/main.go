package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/spicyjump/storefront/docs/swagger"
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/ratelimit"
	"github.com/spicyjump/storefront/pkg/storage"
	"github.com/spicyjump/storefront/pkg/telemetry"
	"github.com/spicyjump/storefront/pkg/workflows"
	adminapi "github.com/spicyjump/storefront/services/admin/application/api"
	catalogapi "github.com/spicyjump/storefront/services/catalog/application/api"
	identityapi "github.com/spicyjump/storefront/services/identity/application/api"
	orderingapi "github.com/spicyjump/storefront/services/ordering/application/api"
	paymentapi "github.com/spicyjump/storefront/services/payment/application/api"
	reviewapi "github.com/spicyjump/storefront/services/review/application/api"
)

// @title						SpicyJump API
// @version					1.0
// @description				Korean food marketplace: catalog, orders, payments and reviews.
// @contact.name				API Support
// @contact.email				dev@spicyjump.kr
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Error("failed to create metrics", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.Open(pool.DB(), events.Options{ConsumerGroup: "storefront-api", Outbox: true}, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
	}

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		Tokens:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Storage:        store,
		Metrics:        metrics,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
	}
	limiter := ratelimit.New(ratelimit.NewRedisCounter(redisClient.Client()), log)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
	}
	if store.Enabled() {
		checks.Storage = store
	}
	if temporalClient != nil {
		checks.Temporal = temporalClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Use(i18n.Middleware(i18n.Lang(cfg.DefaultLanguage)))
		r.Use(auth.Authenticate(appConfig.Tokens, cache.NewTokenStore(redisClient), log))
		registerRoutes(r, appConfig, limiter)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all context routes under /api. Contexts are built in
// dependency order since later ones call into the services of earlier ones.
func registerRoutes(r chi.Router, a *app.Application, limiter *ratelimit.Limiter) {
	i18n.Routes(r)

	identity := identityapi.New(r, a, limiter)
	catalog := catalogapi.New(r, a)
	ordering := orderingapi.New(r, a, identity, catalog)
	paymentapi.New(r, a, ordering)
	review := reviewapi.New(r, a, identity, catalog, ordering)
	adminapi.New(r, a, identity, ordering, review)
}
