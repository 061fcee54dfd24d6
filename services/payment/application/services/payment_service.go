package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/telemetry"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	"github.com/spicyjump/storefront/services/payment/domain/models"
	"github.com/spicyjump/storefront/services/payment/domain/ports"
	"github.com/spicyjump/storefront/services/payment/domain/repositories"
)

const orderPending = "PENDING"

// Gateways holds the configured providers. A nil gateway makes its provider
// unsupported.
type Gateways struct {
	Toss    ports.Toss
	NicePay ports.NicePay
	Stripe  ports.Stripe
}

// Caller identifies who is acting on a payment.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

type CreatePaymentParams struct {
	OrderID  uuid.UUID
	Amount   decimal.Decimal
	Method   string
	Provider string
}

type TossConfirmParams struct {
	PaymentKey string
	OrderID    uuid.UUID
	Amount     decimal.Decimal
}

// StripeIntent is what the browser needs to finish a Stripe payment.
type StripeIntent struct {
	Payment      *models.Payment
	IntentID     string
	ClientSecret string
}

// PaymentService records payments and settles them with the providers.
type PaymentService struct {
	payments repositories.PaymentRepository
	orders   ports.Orders
	gateways Gateways
	metrics  *telemetry.Metrics
	log      logger.Logger
	now      func() time.Time
}

func NewPaymentService(
	payments repositories.PaymentRepository,
	orders ports.Orders,
	gateways Gateways,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		gateways: gateways,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Create opens a PENDING payment for the caller's order.
func (s *PaymentService) Create(ctx context.Context, buyerID uuid.UUID, p CreatePaymentParams) (*models.Payment, error) {
	provider, err := models.ParseProvider(p.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrUnsupportedProvider, err)
	}
	method, err := models.ParseMethod(p.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrInvalidPayment, err)
	}
	order, err := s.ownedOrder(ctx, buyerID, p.OrderID)
	if err != nil {
		return nil, err
	}
	if !p.Amount.Equal(order.Total) {
		return nil, paymentdomain.ErrAmountMismatch
	}
	// A paid order still holds its COMPLETED payment, so it reports the
	// duplicate before the status gate can.
	if err := s.noActivePayment(ctx, order.ID); err != nil {
		return nil, err
	}
	if err := awaitingPayment(order); err != nil {
		return nil, err
	}

	payment := models.NewPayment(order.ID, buyerID, order.Total, order.Currency, method, provider, s.now())
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "payment created",
		"payment_id", payment.ID,
		"order_id", order.ID,
		"provider", provider,
		"amount", payment.Amount.String(),
	)
	return payment, nil
}

// ConfirmToss approves the order's pending Toss payment with the payment key
// returned by the Toss widget.
func (s *PaymentService) ConfirmToss(ctx context.Context, buyerID uuid.UUID, p TossConfirmParams) (*models.Payment, error) {
	if s.gateways.Toss == nil {
		return nil, fmt.Errorf("%w: TOSS is not configured", paymentdomain.ErrUnsupportedProvider)
	}
	payment, err := s.pendingFor(ctx, buyerID, p.OrderID, models.ProviderToss)
	if err != nil {
		return nil, err
	}
	if !p.Amount.Equal(payment.Amount) {
		return nil, paymentdomain.ErrAmountMismatch
	}
	res, err := s.gateways.Toss.Confirm(ctx, p.PaymentKey, p.OrderID.String(), payment.Amount)
	return s.settle(ctx, payment, p.PaymentKey, res, err)
}

// ConfirmNicePay approves the order's pending NicePay payment.
func (s *PaymentService) ConfirmNicePay(ctx context.Context, buyerID uuid.UUID, tid string, orderID uuid.UUID) (*models.Payment, error) {
	if s.gateways.NicePay == nil {
		return nil, fmt.Errorf("%w: NICEPAY is not configured", paymentdomain.ErrUnsupportedProvider)
	}
	payment, err := s.pendingFor(ctx, buyerID, orderID, models.ProviderNicePay)
	if err != nil {
		return nil, err
	}
	res, err := s.gateways.NicePay.Approve(ctx, tid, payment.Amount)
	return s.settle(ctx, payment, tid, res, err)
}

// CreateStripeIntent returns a PaymentIntent for the order, reusing the
// pending Stripe payment and its intent when there is one.
func (s *PaymentService) CreateStripeIntent(ctx context.Context, buyerID, orderID uuid.UUID) (*StripeIntent, error) {
	if s.gateways.Stripe == nil {
		return nil, fmt.Errorf("%w: STRIPE is not configured", paymentdomain.ErrUnsupportedProvider)
	}
	order, err := s.ownedOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.Active(ctx, orderID)
	switch {
	case errors.Is(err, paymentdomain.ErrPaymentNotFound):
		if err := awaitingPayment(order); err != nil {
			return nil, err
		}
		payment = models.NewPayment(order.ID, buyerID, order.Total, order.Currency, models.MethodStripe, models.ProviderStripe, s.now())
		if err := s.payments.Create(ctx, payment); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case payment.Status != models.StatusPending || payment.Provider != models.ProviderStripe:
		return nil, paymentdomain.ErrPaymentInProgress
	default:
		if err := awaitingPayment(order); err != nil {
			return nil, err
		}
	}

	if payment.ProviderTxID != "" {
		intent, err := s.gateways.Stripe.Intent(ctx, payment.ProviderTxID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", paymentdomain.ErrGatewayRejected, err)
		}
		return &StripeIntent{Payment: payment, IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
	}

	intent, err := s.gateways.Stripe.CreateIntent(ctx, payment.Amount, payment.Currency, order.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrGatewayRejected, err)
	}
	payment.ProviderTxID = intent.ID
	payment.UpdatedAt = s.now()
	if err := s.payments.Save(ctx, payment, models.StatusPending); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "stripe intent created", "payment_id", payment.ID, "intent_id", intent.ID)
	return &StripeIntent{Payment: payment, IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmStripe completes the payment once Stripe reports the intent as
// succeeded.
func (s *PaymentService) ConfirmStripe(ctx context.Context, buyerID uuid.UUID, intentID string) (*models.Payment, error) {
	if s.gateways.Stripe == nil {
		return nil, fmt.Errorf("%w: STRIPE is not configured", paymentdomain.ErrUnsupportedProvider)
	}
	payment, err := s.payments.GetByProviderTxID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if payment.BuyerID != buyerID {
		return nil, paymentdomain.ErrPaymentAccessDenied
	}
	if payment.Status != models.StatusPending {
		return nil, paymentdomain.ErrAlreadyProcessed
	}

	intent, err := s.gateways.Stripe.Intent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrGatewayRejected, err)
	}
	if intent.Status != "succeeded" {
		return nil, fmt.Errorf("%w: payment intent is %s", paymentdomain.ErrGatewayRejected, intent.Status)
	}
	if err := payment.Complete(intentID, intent.Raw, s.now()); err != nil {
		return nil, paymentdomain.ErrAlreadyProcessed
	}
	if err := s.payments.Save(ctx, payment, models.StatusPending); err != nil {
		return nil, err
	}
	s.completed(ctx, payment)
	return payment, nil
}

// Get returns a payment to its buyer or an admin.
func (s *PaymentService) Get(ctx context.Context, c Caller, id uuid.UUID) (*models.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Admin && p.BuyerID != c.UserID {
		return nil, paymentdomain.ErrPaymentAccessDenied
	}
	return p, nil
}

// ByOrder lists an order's payments, newest first, to the order's buyer or
// seller or an admin.
func (s *PaymentService) ByOrder(ctx context.Context, c Caller, orderID uuid.UUID) ([]*models.Payment, error) {
	order, err := s.orders.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !c.Admin && order.BuyerID != c.UserID && order.SellerID != c.UserID {
		return nil, paymentdomain.ErrPaymentAccessDenied
	}
	return s.payments.ListByOrder(ctx, orderID)
}

// Refund returns a COMPLETED payment through its provider.
func (s *PaymentService) Refund(ctx context.Context, c Caller, id uuid.UUID, reason string) (*models.Payment, error) {
	p, err := s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusCompleted {
		return nil, paymentdomain.ErrNotRefundable
	}
	if reason == "" {
		reason = "requested by customer"
	}

	var res *ports.Result
	switch {
	case p.Provider == models.ProviderToss && s.gateways.Toss != nil:
		res, err = s.gateways.Toss.Cancel(ctx, p.ProviderTxID, reason)
	case p.Provider == models.ProviderNicePay && s.gateways.NicePay != nil:
		res, err = s.gateways.NicePay.Cancel(ctx, p.ProviderTxID, p.OrderID.String(), reason)
	case p.Provider == models.ProviderStripe && s.gateways.Stripe != nil:
		res, err = s.gateways.Stripe.Refund(ctx, p.ProviderTxID)
	default:
		return nil, fmt.Errorf("%w: %s", paymentdomain.ErrUnsupportedProvider, p.Provider)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "refund rejected by provider", "payment_id", p.ID, "provider", p.Provider, "error", err)
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrRefundFailed, err)
	}

	if err := p.Refund(reason, s.now()); err != nil {
		return nil, paymentdomain.ErrNotRefundable
	}
	if res != nil && res.Raw != nil {
		p.ProviderResponse = res.Raw
	}
	if err := s.payments.Save(ctx, p, models.StatusCompleted); err != nil {
		return nil, err
	}
	s.metrics.PaymentRefunded(ctx, string(p.Provider))
	s.log.InfoContext(ctx, "payment refunded", "payment_id", p.ID, "order_id", p.OrderID, "reason", reason)
	return p, nil
}

// UpdateFromProvider applies a status pushed by a provider webhook. Unknown
// statuses and payments already in the target state are ignored.
func (s *PaymentService) UpdateFromProvider(ctx context.Context, txID, status string) error {
	target, ok := models.ProviderStatus(status)
	if !ok {
		s.log.InfoContext(ctx, "ignoring provider status", "transaction_id", txID, "status", status)
		return nil
	}
	p, err := s.payments.GetByProviderTxID(ctx, txID)
	if err != nil {
		return err
	}
	if p.Status == target || (target == models.StatusRefunded && p.Status == models.StatusCancelled) {
		return nil
	}

	from := p.Status
	if err := p.Apply(target, s.now()); err != nil {
		return fmt.Errorf("%w: %w", paymentdomain.ErrAlreadyProcessed, err)
	}
	if err := s.payments.Save(ctx, p, from); err != nil {
		return err
	}

	switch p.Status {
	case models.StatusCompleted:
		s.completed(ctx, p)
	case models.StatusFailed:
		s.metrics.PaymentFailed(ctx, string(p.Provider))
	case models.StatusRefunded:
		s.metrics.PaymentRefunded(ctx, string(p.Provider))
	}
	s.log.InfoContext(ctx, "payment updated by provider", "payment_id", p.ID, "from", from, "to", p.Status)
	return nil
}

// HandleStripeWebhook verifies a Stripe event and applies it.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateways.Stripe == nil {
		return fmt.Errorf("%w: STRIPE is not configured", paymentdomain.ErrUnsupportedProvider)
	}
	ev, err := s.gateways.Stripe.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if ev.Status == "" || ev.TransactionID == "" {
		s.log.InfoContext(ctx, "ignoring stripe event", "type", ev.Type)
		return nil
	}
	return s.UpdateFromProvider(ctx, ev.TransactionID, ev.Status)
}

func (s *PaymentService) ownedOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*ports.OrderSnapshot, error) {
	order, err := s.orders.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, paymentdomain.ErrPaymentAccessDenied
	}
	return order, nil
}

func awaitingPayment(order *ports.OrderSnapshot) error {
	if order.Status != orderPending {
		return fmt.Errorf("%w: order is %s, not awaiting payment", paymentdomain.ErrInvalidPayment, order.Status)
	}
	return nil
}

func (s *PaymentService) noActivePayment(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.payments.Active(ctx, orderID)
	switch {
	case err == nil:
		return paymentdomain.ErrPaymentInProgress
	case errors.Is(err, paymentdomain.ErrPaymentNotFound):
		return nil
	}
	return err
}

// pendingFor returns the caller's active payment for orderID, which must
// still be PENDING with the given provider.
func (s *PaymentService) pendingFor(ctx context.Context, buyerID, orderID uuid.UUID, provider models.Provider) (*models.Payment, error) {
	p, err := s.payments.Active(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p.BuyerID != buyerID {
		return nil, paymentdomain.ErrPaymentAccessDenied
	}
	if p.Status != models.StatusPending {
		return nil, paymentdomain.ErrAlreadyProcessed
	}
	if p.Provider != provider {
		return nil, fmt.Errorf("%w: payment was opened with %s", paymentdomain.ErrUnsupportedProvider, p.Provider)
	}
	return p, nil
}

// settle records the outcome of a confirm call. A rejected confirmation
// marks the payment FAILED before the error is returned.
func (s *PaymentService) settle(ctx context.Context, p *models.Payment, txID string, res *ports.Result, gwErr error) (*models.Payment, error) {
	now := s.now()
	if gwErr != nil {
		var raw []byte
		if res != nil {
			raw = res.Raw
		}
		_ = p.Fail(gwErr.Error(), raw, now)
		if err := s.payments.Save(ctx, p, models.StatusPending); err != nil {
			s.log.ErrorContext(ctx, "recording failed payment", "payment_id", p.ID, "error", err)
		}
		s.metrics.PaymentFailed(ctx, string(p.Provider))
		s.log.WarnContext(ctx, "payment rejected by provider", "payment_id", p.ID, "provider", p.Provider, "error", gwErr)
		return nil, fmt.Errorf("%w: %w", paymentdomain.ErrGatewayRejected, gwErr)
	}

	if res.TransactionID != "" {
		txID = res.TransactionID
	}
	if err := p.Complete(txID, res.Raw, now); err != nil {
		return nil, paymentdomain.ErrAlreadyProcessed
	}
	if err := s.payments.Save(ctx, p, models.StatusPending); err != nil {
		return nil, err
	}
	s.completed(ctx, p)
	return p, nil
}

func (s *PaymentService) completed(ctx context.Context, p *models.Payment) {
	amount, _ := p.Amount.Float64()
	s.metrics.PaymentCompleted(ctx, string(p.Provider), p.Currency, amount)
	s.log.InfoContext(ctx, "payment completed",
		"payment_id", p.ID,
		"order_id", p.OrderID,
		"provider", p.Provider,
		"transaction_id", p.ProviderTxID,
	)
}
