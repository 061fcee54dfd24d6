package gateways

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/tidwall/gjson"

	"github.com/spicyjump/storefront/services/payment/domain/ports"
)

const providerStripe = "stripe"

// zeroDecimal currencies are charged in whole units.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// webhookStatuses maps Stripe event types onto provider status strings.
var webhookStatuses = map[stripe.EventType]string{
	"payment_intent.succeeded":      "succeeded",
	"payment_intent.payment_failed": "failed",
	"charge.refunded":               "refunded",
}

// Stripe wraps the stripe-go API client.
type Stripe struct {
	api           *client.API
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

var _ ports.Stripe = (*Stripe)(nil)

// MinorUnits converts amount into the smallest currency unit Stripe expects.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func (s *Stripe) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, orderID uuid.UUID) (*ports.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(amount, currency)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID.String())

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, stripeError("create payment intent", err)
	}
	return toIntent(pi), nil
}

func (s *Stripe) Intent(ctx context.Context, id string) (*ports.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, stripeError("retrieve payment intent", err)
	}
	return toIntent(pi), nil
}

func (s *Stripe) Refund(ctx context.Context, intentID string) (*ports.Result, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	r, err := s.api.Refunds.New(params)
	if err != nil {
		return nil, stripeError("refund", err)
	}
	res := &ports.Result{TransactionID: intentID, Status: string(r.Status)}
	if r.LastResponse != nil {
		res.Raw = r.LastResponse.RawJSON
	}
	return res, nil
}

// ParseWebhook verifies the signature and pulls the intent id out of the
// event object. Refund events carry a charge whose payment_intent field names
// the intent.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*ports.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe webhook: %w", err)
	}
	out := &ports.WebhookEvent{Type: string(ev.Type), Status: webhookStatuses[ev.Type]}
	if ev.Data == nil {
		return out, nil
	}
	field := "id"
	if strings.HasPrefix(string(ev.Type), "charge.") {
		field = "payment_intent"
	}
	out.TransactionID = gjson.GetBytes(ev.Data.Raw, field).String()
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *ports.Intent {
	in := &ports.Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}
	if pi.LastResponse != nil {
		in.Raw = pi.LastResponse.RawJSON
	}
	return in
}

func stripeError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &Error{Provider: providerStripe, HTTPStatus: se.HTTPStatusCode, Code: string(se.Code), Message: se.Msg}
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}
