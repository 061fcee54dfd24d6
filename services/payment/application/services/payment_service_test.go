package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/logger"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	"github.com/spicyjump/storefront/services/payment/domain/models"
	"github.com/spicyjump/storefront/services/payment/domain/ports"
)

type memPayments struct {
	byID map[uuid.UUID]*models.Payment
}

func newMemPayments() *memPayments {
	return &memPayments{byID: map[uuid.UUID]*models.Payment{}}
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	for _, existing := range m.byID {
		if existing.OrderID == p.OrderID && existing.Active() {
			return paymentdomain.ErrPaymentInProgress
		}
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPayments) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, paymentdomain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByProviderTxID(_ context.Context, txID string) (*models.Payment, error) {
	for _, p := range m.byID {
		if p.ProviderTxID == txID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentdomain.ErrPaymentNotFound
}

func (m *memPayments) Active(_ context.Context, orderID uuid.UUID) (*models.Payment, error) {
	for _, p := range m.byID {
		if p.OrderID == orderID && p.Active() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentdomain.ErrPaymentNotFound
}

func (m *memPayments) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range m.byID {
		if p.OrderID == orderID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPayments) Save(_ context.Context, p *models.Payment, from models.Status) error {
	stored, ok := m.byID[p.ID]
	if !ok || stored.Status != from {
		return paymentdomain.ErrAlreadyProcessed
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

type orderBook map[uuid.UUID]*ports.OrderSnapshot

func (b orderBook) Order(_ context.Context, id uuid.UUID) (*ports.OrderSnapshot, error) {
	o, ok := b[id]
	if !ok {
		return nil, paymentdomain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

type fakeToss struct {
	err       error
	confirmed []string
	cancelled []string
}

func (f *fakeToss) Confirm(_ context.Context, paymentKey, _ string, _ decimal.Decimal) (*ports.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.confirmed = append(f.confirmed, paymentKey)
	return &ports.Result{TransactionID: paymentKey, Status: "DONE", Raw: []byte(`{"status":"DONE"}`)}, nil
}

func (f *fakeToss) Cancel(_ context.Context, paymentKey, _ string) (*ports.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.cancelled = append(f.cancelled, paymentKey)
	return &ports.Result{TransactionID: paymentKey, Status: "CANCELED"}, nil
}

type fakeStripe struct {
	intents map[string]*ports.Intent
	created int
}

func (f *fakeStripe) CreateIntent(context.Context, decimal.Decimal, string, uuid.UUID) (*ports.Intent, error) {
	f.created++
	in := &ports.Intent{ID: "pi_" + uuid.NewString()[:8], ClientSecret: "secret", Status: "requires_payment_method"}
	f.intents[in.ID] = in
	return in, nil
}

func (f *fakeStripe) Intent(_ context.Context, id string) (*ports.Intent, error) {
	in, ok := f.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return in, nil
}

func (f *fakeStripe) Refund(_ context.Context, intentID string) (*ports.Result, error) {
	return &ports.Result{TransactionID: intentID, Status: "succeeded"}, nil
}

func (f *fakeStripe) ParseWebhook(payload []byte, _ string) (*ports.WebhookEvent, error) {
	return &ports.WebhookEvent{Type: "payment_intent.succeeded", TransactionID: string(payload), Status: "succeeded"}, nil
}

type fixture struct {
	svc      *PaymentService
	payments *memPayments
	toss     *fakeToss
	stripe   *fakeStripe
	orders   orderBook
	buyer    uuid.UUID
	seller   uuid.UUID
	order    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments: newMemPayments(),
		toss:     &fakeToss{},
		stripe:   &fakeStripe{intents: map[string]*ports.Intent{}},
		buyer:    uuid.New(),
		seller:   uuid.New(),
		order:    uuid.New(),
	}
	f.orders = orderBook{f.order: {
		ID: f.order, BuyerID: f.buyer, SellerID: f.seller,
		Total: decimal.RequireFromString("31.00"), Currency: "USD", Status: "PENDING",
	}}
	log := logger.New(&config.Config{LogLevel: "error"})
	f.svc = NewPaymentService(f.payments, f.orders, Gateways{Toss: f.toss, Stripe: f.stripe}, nil, log)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *fixture) open(t *testing.T, provider string) *models.Payment {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.buyer, CreatePaymentParams{
		OrderID: f.order, Amount: decimal.RequireFromString("31"), Method: "CARD", Provider: provider,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "toss")
	if p.Status != models.StatusPending || p.Provider != models.ProviderToss || p.Currency != "USD" {
		t.Fatalf("unexpected payment: %+v", p)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, p *CreatePaymentParams) uuid.UUID
		wantErr error
	}{
		{"unknown order", func(_ *fixture, p *CreatePaymentParams) uuid.UUID {
			p.OrderID = uuid.New()
			return uuid.Nil
		}, paymentdomain.ErrOrderNotFound},
		{"someone else's order", func(_ *fixture, _ *CreatePaymentParams) uuid.UUID {
			return uuid.New()
		}, paymentdomain.ErrPaymentAccessDenied},
		{"wrong amount", func(_ *fixture, p *CreatePaymentParams) uuid.UUID {
			p.Amount = decimal.RequireFromString("30.99")
			return uuid.Nil
		}, paymentdomain.ErrAmountMismatch},
		{"unknown provider", func(_ *fixture, p *CreatePaymentParams) uuid.UUID {
			p.Provider = "paypal"
			return uuid.Nil
		}, paymentdomain.ErrUnsupportedProvider},
		{"unknown method", func(_ *fixture, p *CreatePaymentParams) uuid.UUID {
			p.Method = "CASH"
			return uuid.Nil
		}, paymentdomain.ErrInvalidPayment},
		{"order cancelled", func(f *fixture, _ *CreatePaymentParams) uuid.UUID {
			f.orders[f.order].Status = "CANCELLED"
			return uuid.Nil
		}, paymentdomain.ErrInvalidPayment},
		{"wrong amount on a cancelled order", func(f *fixture, p *CreatePaymentParams) uuid.UUID {
			f.orders[f.order].Status = "CANCELLED"
			p.Amount = decimal.RequireFromString("30.99")
			return uuid.Nil
		}, paymentdomain.ErrAmountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := CreatePaymentParams{OrderID: f.order, Amount: decimal.RequireFromString("31"), Method: "CARD", Provider: "TOSS"}
			caller := f.buyer
			if other := tt.mutate(f, &p); other != uuid.Nil {
				caller = other
			}
			if _, err := f.svc.Create(context.Background(), caller, p); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate_SecondActivePayment(t *testing.T) {
	f := newFixture(t)
	f.open(t, "TOSS")
	_, err := f.svc.Create(context.Background(), f.buyer, CreatePaymentParams{
		OrderID: f.order, Amount: decimal.RequireFromString("31"), Method: "CARD", Provider: "NICEPAY",
	})
	if !errors.Is(err, paymentdomain.ErrPaymentInProgress) {
		t.Fatalf("err = %v, want ErrPaymentInProgress", err)
	}
}

func TestCreate_OrderAlreadyPaid(t *testing.T) {
	f := newFixture(t)
	f.open(t, "TOSS")
	if _, err := f.svc.ConfirmToss(context.Background(), f.buyer, TossConfirmParams{
		PaymentKey: "pk_1", OrderID: f.order, Amount: decimal.RequireFromString("31"),
	}); err != nil {
		t.Fatalf("ConfirmToss: %v", err)
	}
	f.orders[f.order].Status = "PAID"

	_, err := f.svc.Create(context.Background(), f.buyer, CreatePaymentParams{
		OrderID: f.order, Amount: decimal.RequireFromString("31"), Method: "CARD", Provider: "TOSS",
	})
	if !errors.Is(err, paymentdomain.ErrPaymentInProgress) {
		t.Fatalf("err = %v, want ErrPaymentInProgress", err)
	}
}

func TestCreateStripeIntent_OrderNotPending(t *testing.T) {
	f := newFixture(t)
	f.orders[f.order].Status = "CANCELLED"

	if _, err := f.svc.CreateStripeIntent(context.Background(), f.buyer, f.order); !errors.Is(err, paymentdomain.ErrInvalidPayment) {
		t.Fatalf("err = %v, want ErrInvalidPayment", err)
	}
	if f.stripe.created != 0 {
		t.Fatalf("intent created for a cancelled order")
	}
}

func TestConfirmToss(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "TOSS")

	got, err := f.svc.ConfirmToss(context.Background(), f.buyer, TossConfirmParams{
		PaymentKey: "pk_1", OrderID: f.order, Amount: decimal.RequireFromString("31.00"),
	})
	if err != nil {
		t.Fatalf("ConfirmToss: %v", err)
	}
	if got.Status != models.StatusCompleted || got.ProviderTxID != "pk_1" || got.PaidAt == nil {
		t.Fatalf("unexpected payment: %+v", got)
	}
	if stored := f.payments.byID[p.ID]; stored.Status != models.StatusCompleted {
		t.Fatalf("stored status = %s", stored.Status)
	}

	_, err = f.svc.ConfirmToss(context.Background(), f.buyer, TossConfirmParams{
		PaymentKey: "pk_1", OrderID: f.order, Amount: decimal.RequireFromString("31"),
	})
	if !errors.Is(err, paymentdomain.ErrAlreadyProcessed) {
		t.Fatalf("second confirm err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestConfirmToss_AmountMismatch(t *testing.T) {
	f := newFixture(t)
	f.open(t, "TOSS")
	_, err := f.svc.ConfirmToss(context.Background(), f.buyer, TossConfirmParams{
		PaymentKey: "pk_1", OrderID: f.order, Amount: decimal.RequireFromString("1"),
	})
	if !errors.Is(err, paymentdomain.ErrAmountMismatch) {
		t.Fatalf("err = %v, want ErrAmountMismatch", err)
	}
	if len(f.toss.confirmed) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestConfirmToss_RejectedMarksFailed(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "TOSS")
	f.toss.err = errors.New("card declined")

	_, err := f.svc.ConfirmToss(context.Background(), f.buyer, TossConfirmParams{
		PaymentKey: "pk_1", OrderID: f.order, Amount: decimal.RequireFromString("31"),
	})
	if !errors.Is(err, paymentdomain.ErrGatewayRejected) {
		t.Fatalf("err = %v, want ErrGatewayRejected", err)
	}
	stored := f.payments.byID[p.ID]
	if stored.Status != models.StatusFailed || stored.FailureReason != "card declined" {
		t.Fatalf("stored = %s %q", stored.Status, stored.FailureReason)
	}

	// A failed payment frees the order for another attempt.
	f.toss.err = nil
	f.open(t, "TOSS")
}

func TestConfirmNicePay_NotConfigured(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.ConfirmNicePay(context.Background(), f.buyer, "tid", f.order); !errors.Is(err, paymentdomain.ErrUnsupportedProvider) {
		t.Fatalf("err = %v, want ErrUnsupportedProvider", err)
	}
}

func TestStripeIntentAndConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateStripeIntent(ctx, f.buyer, f.order)
	if err != nil {
		t.Fatalf("CreateStripeIntent: %v", err)
	}
	again, err := f.svc.CreateStripeIntent(ctx, f.buyer, f.order)
	if err != nil {
		t.Fatalf("CreateStripeIntent again: %v", err)
	}
	if again.IntentID != first.IntentID || f.stripe.created != 1 {
		t.Fatalf("intent not reused: %s vs %s (created %d)", first.IntentID, again.IntentID, f.stripe.created)
	}

	if _, err := f.svc.ConfirmStripe(ctx, f.buyer, first.IntentID); !errors.Is(err, paymentdomain.ErrGatewayRejected) {
		t.Fatalf("unpaid intent err = %v, want ErrGatewayRejected", err)
	}
	if f.payments.byID[first.Payment.ID].Status != models.StatusPending {
		t.Fatal("unpaid intent must leave the payment pending")
	}

	f.stripe.intents[first.IntentID].Status = "succeeded"
	if _, err := f.svc.ConfirmStripe(ctx, uuid.New(), first.IntentID); !errors.Is(err, paymentdomain.ErrPaymentAccessDenied) {
		t.Fatalf("stranger err = %v, want ErrPaymentAccessDenied", err)
	}
	p, err := f.svc.ConfirmStripe(ctx, f.buyer, first.IntentID)
	if err != nil {
		t.Fatalf("ConfirmStripe: %v", err)
	}
	if p.Status != models.StatusCompleted {
		t.Fatalf("status = %s", p.Status)
	}
}

func TestStripeIntent_OtherProviderPending(t *testing.T) {
	f := newFixture(t)
	f.open(t, "TOSS")
	if _, err := f.svc.CreateStripeIntent(context.Background(), f.buyer, f.order); !errors.Is(err, paymentdomain.ErrPaymentInProgress) {
		t.Fatalf("err = %v, want ErrPaymentInProgress", err)
	}
}

func TestGetAndByOrder_Access(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "TOSS")
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, Caller{UserID: f.seller}, p.ID); !errors.Is(err, paymentdomain.ErrPaymentAccessDenied) {
		t.Fatalf("seller Get err = %v", err)
	}
	if _, err := f.svc.Get(ctx, Caller{UserID: uuid.New(), Admin: true}, p.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
	list, err := f.svc.ByOrder(ctx, Caller{UserID: f.seller}, f.order)
	if err != nil || len(list) != 1 {
		t.Fatalf("seller ByOrder = %d, %v", len(list), err)
	}
	if _, err := f.svc.ByOrder(ctx, Caller{UserID: uuid.New()}, f.order); !errors.Is(err, paymentdomain.ErrPaymentAccessDenied) {
		t.Fatalf("stranger ByOrder err = %v", err)
	}
}

func TestRefund(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "TOSS")
	ctx := context.Background()

	if _, err := f.svc.Refund(ctx, Caller{UserID: f.buyer}, p.ID, ""); !errors.Is(err, paymentdomain.ErrNotRefundable) {
		t.Fatalf("pending refund err = %v, want ErrNotRefundable", err)
	}

	if _, err := f.svc.ConfirmToss(ctx, f.buyer, TossConfirmParams{PaymentKey: "pk_r", OrderID: f.order, Amount: decimal.RequireFromString("31")}); err != nil {
		t.Fatalf("ConfirmToss: %v", err)
	}
	got, err := f.svc.Refund(ctx, Caller{UserID: f.buyer}, p.ID, "")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if got.Status != models.StatusRefunded || got.RefundReason != "requested by customer" || got.RefundedAt == nil {
		t.Fatalf("unexpected refund: %+v", got)
	}
	if len(f.toss.cancelled) != 1 || f.toss.cancelled[0] != "pk_r" {
		t.Fatalf("toss cancel calls = %v", f.toss.cancelled)
	}
}

func TestRefund_GatewayFailure(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "TOSS")
	ctx := context.Background()
	if _, err := f.svc.ConfirmToss(ctx, f.buyer, TossConfirmParams{PaymentKey: "pk", OrderID: f.order, Amount: decimal.RequireFromString("31")}); err != nil {
		t.Fatalf("ConfirmToss: %v", err)
	}
	f.toss.err = errors.New("already cancelled")

	if _, err := f.svc.Refund(ctx, Caller{UserID: f.buyer}, p.ID, "late"); !errors.Is(err, paymentdomain.ErrRefundFailed) {
		t.Fatalf("err = %v, want ErrRefundFailed", err)
	}
	if f.payments.byID[p.ID].Status != models.StatusCompleted {
		t.Fatal("payment must stay completed")
	}
}

func TestUpdateFromProvider(t *testing.T) {
	tests := []struct {
		name     string
		complete bool
		status   string
		want     models.Status
	}{
		{"done completes", false, "DONE", models.StatusCompleted},
		{"aborted fails", false, "ABORTED", models.StatusFailed},
		{"cancel before settlement", false, "CANCELED", models.StatusCancelled},
		{"cancel after settlement", true, "CANCELED", models.StatusRefunded},
		{"repeat done is a no-op", true, "DONE", models.StatusCompleted},
		{"unknown status ignored", false, "WAITING_FOR_DEPOSIT", models.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.open(t, "TOSS")
			stored := f.payments.byID[p.ID]
			stored.ProviderTxID = "pk_w"
			if tt.complete {
				stored.Status = models.StatusCompleted
			}

			if err := f.svc.UpdateFromProvider(context.Background(), "pk_w", tt.status); err != nil {
				t.Fatalf("UpdateFromProvider: %v", err)
			}
			if got := f.payments.byID[p.ID].Status; got != tt.want {
				t.Fatalf("status = %s, want %s", got, tt.want)
			}
			// Redelivery is harmless.
			if err := f.svc.UpdateFromProvider(context.Background(), "pk_w", tt.status); err != nil {
				t.Fatalf("redelivery: %v", err)
			}
		})
	}
}

func TestHandleStripeWebhook(t *testing.T) {
	f := newFixture(t)
	in, err := f.svc.CreateStripeIntent(context.Background(), f.buyer, f.order)
	if err != nil {
		t.Fatalf("CreateStripeIntent: %v", err)
	}
	if err := f.svc.HandleStripeWebhook(context.Background(), []byte(in.IntentID), "sig"); err != nil {
		t.Fatalf("HandleStripeWebhook: %v", err)
	}
	if f.payments.byID[in.Payment.ID].Status != models.StatusCompleted {
		t.Fatal("webhook did not complete the payment")
	}
}
