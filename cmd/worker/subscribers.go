package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/spicyjump/storefront/pkg/events"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/services/ordering/application/workflows"
	orderingevents "github.com/spicyjump/storefront/services/ordering/domain/events"
	paymentevents "github.com/spicyjump/storefront/services/payment/domain/events"
	reviewevents "github.com/spicyjump/storefront/services/review/domain/events"
)

// restockConsumer namespaces restock claims in the event ledger.
const restockConsumer = "catalog-restock"

type orderLifecycle interface {
	MarkPaid(ctx context.Context, id uuid.UUID) error
	MarkRefunded(ctx context.Context, id uuid.UUID) error
}

type stockKeeper interface {
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
}

type ratingSyncer interface {
	SyncProductRating(ctx context.Context, productID uuid.UUID) error
}

type eventLedger interface {
	Claim(ctx context.Context, consumer, eventID string) (bool, error)
	Release(ctx context.Context, consumer, eventID string) error
}

type workflowStarter interface {
	StartOnce(ctx context.Context, workflowID, taskQueue string, wf any, args ...any) (client.WorkflowRun, error)
}

// subscribers holds the worker's event handlers. A nil expiry starter means
// Temporal is disabled and the cron sweep expires unpaid orders instead.
type subscribers struct {
	orders         orderLifecycle
	stock          stockKeeper
	ratings        ratingSyncer
	ledger         eventLedger
	expiry         workflowStarter
	taskQueue      string
	paymentTimeout time.Duration
	log            logger.Logger
}

// routes maps each topic to its handler.
func (s *subscribers) routes() map[string]events.Handler {
	return map[string]events.Handler{
		orderingevents.TopicOrderCreated:    s.orderCreated,
		orderingevents.TopicOrderCancelled:  s.orderCancelled,
		paymentevents.TopicPaymentCompleted: s.paymentCompleted,
		paymentevents.TopicPaymentRefunded:  s.paymentRefunded,
		reviewevents.TopicReviewChanged:     s.reviewChanged,
	}
}

// orderCreated starts the payment expiry workflow for the new order.
func (s *subscribers) orderCreated(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[orderingevents.OrderCreated](msg)
	if err != nil {
		return err
	}
	if s.expiry == nil {
		s.log.DebugContext(ctx, "temporal disabled, leaving expiry to the sweep", "order_id", evt.OrderID)
		return nil
	}
	_, err = s.expiry.StartOnce(ctx, workflows.WorkflowID(evt.OrderID), s.taskQueue,
		workflows.OrderPaymentExpiryWorkflow,
		workflows.ExpiryInput{OrderID: evt.OrderID, Timeout: s.paymentTimeout},
	)
	return err
}

// orderCancelled gives the reserved units back to the catalog. Each line is
// claimed separately so a retry after a partial failure skips the lines
// already restocked.
func (s *subscribers) orderCancelled(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[orderingevents.OrderCancelled](msg)
	if err != nil {
		return err
	}
	if !evt.Restock {
		return nil
	}
	for _, item := range evt.Items {
		claim := evt.EventID.String() + ":" + item.ProductID.String()
		fresh, err := s.ledger.Claim(ctx, restockConsumer, claim)
		if err != nil {
			return err
		}
		if !fresh {
			continue
		}
		if err := s.stock.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			if rerr := s.ledger.Release(ctx, restockConsumer, claim); rerr != nil {
				s.log.ErrorContext(ctx, "restock claim not released", "order_id", evt.OrderID, "error", rerr)
			}
			return fmt.Errorf("restock %s for order %s: %w", item.ProductID, evt.OrderID, err)
		}
	}
	s.log.InfoContext(ctx, "order restocked", "order_id", evt.OrderID, "lines", len(evt.Items), "reason", evt.Reason)
	return nil
}

func (s *subscribers) paymentCompleted(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[paymentevents.PaymentCompleted](msg)
	if err != nil {
		return err
	}
	return s.orders.MarkPaid(ctx, evt.OrderID)
}

func (s *subscribers) paymentRefunded(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[paymentevents.PaymentRefunded](msg)
	if err != nil {
		return err
	}
	return s.orders.MarkRefunded(ctx, evt.OrderID)
}

func (s *subscribers) reviewChanged(ctx context.Context, msg *message.Message) error {
	evt, err := events.Decode[reviewevents.ReviewChanged](msg)
	if err != nil {
		return err
	}
	return s.ratings.SyncProductRating(ctx, evt.ProductID)
}

// subscribe registers every route on bus and drains the error channels.
func (s *subscribers) subscribe(ctx context.Context, bus *events.EventBus) error {
	topics := make([]string, 0, 5)
	for topic, handler := range s.routes() {
		errCh, err := bus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		go func() {
			for err := range errCh {
				s.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}
	s.log.Info("event subscribers registered", "topics", topics)
	return nil
}
