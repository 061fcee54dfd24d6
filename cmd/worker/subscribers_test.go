package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/events"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/services/ordering/application/workflows"
	orderingevents "github.com/spicyjump/storefront/services/ordering/domain/events"
	paymentevents "github.com/spicyjump/storefront/services/payment/domain/events"
	reviewevents "github.com/spicyjump/storefront/services/review/domain/events"
)

type lifecycle struct{ paid, refunded []uuid.UUID }

func (l *lifecycle) MarkPaid(_ context.Context, id uuid.UUID) error {
	l.paid = append(l.paid, id)
	return nil
}

func (l *lifecycle) MarkRefunded(_ context.Context, id uuid.UUID) error {
	l.refunded = append(l.refunded, id)
	return nil
}

type shelf struct {
	restored map[uuid.UUID]int
	failOn   uuid.UUID
}

func (s *shelf) RestoreStock(_ context.Context, id uuid.UUID, qty int) error {
	if id == s.failOn {
		return errors.New("db down")
	}
	s.restored[id] += qty
	return nil
}

type syncer struct{ synced []uuid.UUID }

func (s *syncer) SyncProductRating(_ context.Context, id uuid.UUID) error {
	s.synced = append(s.synced, id)
	return nil
}

type memLedger map[string]bool

func (m memLedger) Claim(_ context.Context, consumer, id string) (bool, error) {
	k := consumer + ":" + id
	if m[k] {
		return false, nil
	}
	m[k] = true
	return true, nil
}

func (m memLedger) Release(_ context.Context, consumer, id string) error {
	delete(m, consumer+":"+id)
	return nil
}

type starter struct {
	ids   []string
	input workflows.ExpiryInput
}

func (s *starter) StartOnce(_ context.Context, id, _ string, _ any, args ...any) (client.WorkflowRun, error) {
	s.ids = append(s.ids, id)
	s.input = args[0].(workflows.ExpiryInput)
	return nil, nil
}

func newSubscribers() (*subscribers, *lifecycle, *shelf, *syncer) {
	l, sh, sy := &lifecycle{}, &shelf{restored: map[uuid.UUID]int{}}, &syncer{}
	return &subscribers{
		orders:         l,
		stock:          sh,
		ratings:        sy,
		ledger:         memLedger{},
		taskQueue:      "orders",
		paymentTimeout: 30 * time.Minute,
		log:            logger.New(&config.Config{LogLevel: "error"}),
	}, l, sh, sy
}

func encode(t *testing.T, event any) *message.Message {
	t.Helper()
	msg, err := events.NewMessage(context.Background(), event)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return msg
}

func TestRoutes_CoverEveryTopic(t *testing.T) {
	s, _, _, _ := newSubscribers()
	routes := s.routes()
	for _, topic := range []string{
		orderingevents.TopicOrderCreated,
		orderingevents.TopicOrderCancelled,
		paymentevents.TopicPaymentCompleted,
		paymentevents.TopicPaymentRefunded,
		reviewevents.TopicReviewChanged,
	} {
		if routes[topic] == nil {
			t.Errorf("no handler for %s", topic)
		}
	}
}

func TestOrderCreated_StartsExpiryWorkflow(t *testing.T) {
	s, _, _, _ := newSubscribers()
	st := &starter{}
	s.expiry = st
	orderID := uuid.New()

	err := s.orderCreated(context.Background(), encode(t, orderingevents.OrderCreated{
		Meta: events.NewMeta(time.Now()), OrderID: orderID, Total: decimal.NewFromInt(10),
	}))
	if err != nil {
		t.Fatalf("orderCreated: %v", err)
	}
	if len(st.ids) != 1 || st.ids[0] != workflows.WorkflowID(orderID) {
		t.Fatalf("started %v", st.ids)
	}
	if st.input.OrderID != orderID || st.input.Timeout != 30*time.Minute {
		t.Fatalf("input = %+v", st.input)
	}
}

func TestOrderCreated_WithoutTemporal(t *testing.T) {
	s, _, _, _ := newSubscribers()
	err := s.orderCreated(context.Background(), encode(t, orderingevents.OrderCreated{
		Meta: events.NewMeta(time.Now()), OrderID: uuid.New(),
	}))
	if err != nil {
		t.Fatalf("orderCreated: %v", err)
	}
}

func TestOrderCancelled_RestocksOnce(t *testing.T) {
	s, _, sh, _ := newSubscribers()
	a, b := uuid.New(), uuid.New()
	msg := encode(t, orderingevents.OrderCancelled{
		Meta:    events.NewMeta(time.Now()),
		OrderID: uuid.New(),
		Items:   []orderingevents.CancelledItem{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 1}},
		Restock: true,
	})

	for range 2 {
		if err := s.orderCancelled(context.Background(), msg); err != nil {
			t.Fatalf("orderCancelled: %v", err)
		}
	}
	if sh.restored[a] != 2 || sh.restored[b] != 1 {
		t.Fatalf("redelivery restocked twice: %v", sh.restored)
	}
}

func TestOrderCancelled_RetryAfterPartialFailure(t *testing.T) {
	s, _, sh, _ := newSubscribers()
	a, b := uuid.New(), uuid.New()
	sh.failOn = b
	msg := encode(t, orderingevents.OrderCancelled{
		Meta:    events.NewMeta(time.Now()),
		OrderID: uuid.New(),
		Items:   []orderingevents.CancelledItem{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 3}},
		Restock: true,
	})

	if err := s.orderCancelled(context.Background(), msg); err == nil {
		t.Fatal("expected restock failure")
	}
	sh.failOn = uuid.Nil
	if err := s.orderCancelled(context.Background(), msg); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if sh.restored[a] != 2 || sh.restored[b] != 3 {
		t.Fatalf("restored = %v", sh.restored)
	}
}

func TestOrderCancelled_ShippedOrderNotRestocked(t *testing.T) {
	s, _, sh, _ := newSubscribers()
	err := s.orderCancelled(context.Background(), encode(t, orderingevents.OrderCancelled{
		Meta:    events.NewMeta(time.Now()),
		Items:   []orderingevents.CancelledItem{{ProductID: uuid.New(), Quantity: 1}},
		Restock: false,
	}))
	if err != nil || len(sh.restored) != 0 {
		t.Fatalf("restored = %v, err = %v", sh.restored, err)
	}
}

func TestPaymentEvents_DriveOrders(t *testing.T) {
	s, l, _, _ := newSubscribers()
	paid, refunded := uuid.New(), uuid.New()

	if err := s.paymentCompleted(context.Background(), encode(t, paymentevents.PaymentCompleted{
		Meta: events.NewMeta(time.Now()), OrderID: paid,
	})); err != nil {
		t.Fatal(err)
	}
	if err := s.paymentRefunded(context.Background(), encode(t, paymentevents.PaymentRefunded{
		Meta: events.NewMeta(time.Now()), OrderID: refunded,
	})); err != nil {
		t.Fatal(err)
	}
	if len(l.paid) != 1 || l.paid[0] != paid || len(l.refunded) != 1 || l.refunded[0] != refunded {
		t.Fatalf("paid %v refunded %v", l.paid, l.refunded)
	}
}

func TestReviewChanged_SyncsRating(t *testing.T) {
	s, _, _, sy := newSubscribers()
	product := uuid.New()
	if err := s.reviewChanged(context.Background(), encode(t, reviewevents.ReviewChanged{
		Meta: events.NewMeta(time.Now()), ProductID: product, Change: reviewevents.ChangeCreated,
	})); err != nil {
		t.Fatal(err)
	}
	if len(sy.synced) != 1 || sy.synced[0] != product {
		t.Fatalf("synced %v", sy.synced)
	}
}

func TestDecodeFailureIsAnError(t *testing.T) {
	s, _, _, _ := newSubscribers()
	msg := message.NewMessage("1", []byte("not json"))
	if err := s.paymentCompleted(context.Background(), msg); err == nil {
		t.Fatal("expected decode error")
	}
}
