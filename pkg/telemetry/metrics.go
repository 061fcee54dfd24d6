package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/spicyjump/storefront"

// Metrics are the storefront business counters exported on /metrics.
// A nil *Metrics records nothing, so services accept it as optional.
type Metrics struct {
	ordersCreated     metric.Int64Counter
	ordersCancelled   metric.Int64Counter
	paymentsCompleted metric.Int64Counter
	paymentsFailed    metric.Int64Counter
	revenue           metric.Float64Counter
	refunds           metric.Int64Counter
	loginFailures     metric.Int64Counter
}

// NewMetrics creates the counters on the global meter provider. Call it after
// Setup.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	var (
		m   Metrics
		err error
	)
	if m.ordersCreated, err = meter.Int64Counter("storefront_orders_created",
		metric.WithDescription("Orders placed")); err != nil {
		return nil, fmt.Errorf("orders.created counter: %w", err)
	}
	if m.ordersCancelled, err = meter.Int64Counter("storefront_orders_cancelled",
		metric.WithDescription("Orders cancelled, by reason")); err != nil {
		return nil, fmt.Errorf("orders.cancelled counter: %w", err)
	}
	if m.paymentsCompleted, err = meter.Int64Counter("storefront_payments_completed",
		metric.WithDescription("Payments confirmed by a gateway")); err != nil {
		return nil, fmt.Errorf("payments.completed counter: %w", err)
	}
	if m.paymentsFailed, err = meter.Int64Counter("storefront_payments_failed",
		metric.WithDescription("Payments rejected by a gateway")); err != nil {
		return nil, fmt.Errorf("payments.failed counter: %w", err)
	}
	if m.revenue, err = meter.Float64Counter("storefront_payments_amount",
		metric.WithDescription("Confirmed payment volume in major currency units")); err != nil {
		return nil, fmt.Errorf("payments.amount counter: %w", err)
	}
	if m.refunds, err = meter.Int64Counter("storefront_payments_refunded",
		metric.WithDescription("Payments refunded")); err != nil {
		return nil, fmt.Errorf("payments.refunded counter: %w", err)
	}
	if m.loginFailures, err = meter.Int64Counter("storefront_auth_login_failures",
		metric.WithDescription("Rejected login attempts, by reason")); err != nil {
		return nil, fmt.Errorf("auth.login_failures counter: %w", err)
	}
	return &m, nil
}

func (m *Metrics) OrderCreated(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("currency", currency)))
}

func (m *Metrics) OrderCancelled(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.ordersCancelled.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) PaymentCompleted(ctx context.Context, provider, currency string, amount float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("currency", currency),
	)
	m.paymentsCompleted.Add(ctx, 1, attrs)
	m.revenue.Add(ctx, amount, attrs)
}

func (m *Metrics) PaymentFailed(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.paymentsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *Metrics) PaymentRefunded(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.refunds.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m *Metrics) LoginFailed(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.loginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
