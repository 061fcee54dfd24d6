// Package workflows holds the ordering Temporal workflows and activities.
package workflows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ExpiryInput starts OrderPaymentExpiryWorkflow.
type ExpiryInput struct {
	OrderID uuid.UUID     `json:"order_id"`
	Timeout time.Duration `json:"timeout"`
}

// WorkflowID is the one expiry workflow allowed per order.
func WorkflowID(orderID uuid.UUID) string {
	return "order-payment-expiry-" + orderID.String()
}

// OrderPaymentExpiryWorkflow waits out the payment window and then cancels the
// order if it is still unpaid.
func OrderPaymentExpiryWorkflow(ctx workflow.Context, in ExpiryInput) (bool, error) {
	if err := workflow.Sleep(ctx, in.Timeout); err != nil {
		return false, err
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	})

	var a *Activities
	var expired bool
	if err := workflow.ExecuteActivity(ctx, a.ExpireUnpaidOrder, in.OrderID).Get(ctx, &expired); err != nil {
		return false, err
	}
	workflow.GetLogger(ctx).Info("payment window closed", "order_id", in.OrderID, "expired", expired)
	return expired, nil
}

// Expirer is the order service operation the activity calls.
type Expirer interface {
	ExpireIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error)
}

// Activities are registered on the worker as a struct so their methods share
// the order service.
type Activities struct {
	Orders Expirer
}

// ExpireUnpaidOrder cancels the order if it is still PENDING.
func (a *Activities) ExpireUnpaidOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return a.Orders.ExpireIfUnpaid(ctx, orderID)
}
