package main

import (
	"context"
	"time"

	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/scheduler"
)

type viewFlusher interface {
	FlushViews(ctx context.Context) (int, error)
}

type orderSweeper interface {
	ExpireStale(ctx context.Context) (int, error)
}

type ratingReconciler interface {
	ReconcileRatings(ctx context.Context) (int, error)
}

// batchJobs are the worker's cron jobs. The stale order sweep is the
// fallback for deployments without Temporal and also catches orders whose
// workflow never started.
func batchJobs(views viewFlusher, orders orderSweeper, ratings ratingReconciler, log logger.Logger) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:    "flush-product-views",
			Spec:    "@every 1m",
			Timeout: 30 * time.Second,
			Run: func(ctx context.Context) error {
				n, err := views.FlushViews(ctx)
				if n > 0 {
					log.DebugContext(ctx, "product views flushed", "products", n)
				}
				return err
			},
		},
		{
			Name:    "expire-unpaid-orders",
			Spec:    "@every 5m",
			Timeout: 2 * time.Minute,
			Run: func(ctx context.Context) error {
				n, err := orders.ExpireStale(ctx)
				if n > 0 {
					log.InfoContext(ctx, "unpaid orders expired", "count", n)
				}
				return err
			},
		},
		{
			Name:    "reconcile-product-ratings",
			Spec:    "0 3 * * *",
			Timeout: 15 * time.Minute,
			Run: func(ctx context.Context) error {
				n, err := ratings.ReconcileRatings(ctx)
				log.InfoContext(ctx, "product ratings reconciled", "products", n)
				return err
			},
		},
	}
}
