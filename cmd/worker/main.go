package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/scheduler"
	"github.com/spicyjump/storefront/pkg/telemetry"
	"github.com/spicyjump/storefront/pkg/workflows"
	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	orderingworkflows "github.com/spicyjump/storefront/services/ordering/application/workflows"
	reviewsvcs "github.com/spicyjump/storefront/services/review/application/services"
)

// eventLedgerTTL outlives every retry of a message several times over.
const eventLedgerTTL = 7 * 24 * time.Hour

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

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
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.Open(pool.DB(), events.Options{ConsumerGroup: "storefront-worker", Outbox: true}, log)
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
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Metrics:  metrics,
	}

	if cfg.TemporalEnabled {
		tc, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer tc.Close()
		a.TemporalClient = tc
	}

	identity := identitysvcs.New(a)
	catalog := catalogsvcs.New(a)
	ordering := orderingsvcs.New(a, identity, catalog)
	review := reviewsvcs.New(a, identity, catalog, ordering)

	subs := &subscribers{
		orders:         ordering.Orders,
		stock:          catalog.Products,
		ratings:        review.Reviews,
		ledger:         cache.NewEventLedger(redisClient, eventLedgerTTL),
		taskQueue:      cfg.TemporalTaskQueue,
		paymentTimeout: ordering.Orders.PaymentTimeout(),
		log:            log,
	}

	if a.TemporalClient != nil {
		subs.expiry = a.TemporalClient
		w := a.TemporalClient.NewWorker(cfg.TemporalTaskQueue)
		w.RegisterWorkflow(orderingworkflows.OrderPaymentExpiryWorkflow)
		w.RegisterActivity(&orderingworkflows.Activities{Orders: ordering.Orders})
		if err := w.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)
	}

	if err := subs.subscribe(ctx, eventBus); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	sched := scheduler.New(log, time.UTC)
	for _, job := range batchJobs(catalog.Products, ordering.Orders, review.Reviews, log) {
		if err := sched.Register(job); err != nil {
			log.Error("failed to register batch job", "job", job.Name, "error", err)
			os.Exit(1) //nolint:gocritic
		}
	}
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	stopCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	sched.Stop(stopCtx)
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}
