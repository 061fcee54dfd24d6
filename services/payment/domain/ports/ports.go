// Package ports declares what payment needs from ordering and from the
// payment providers.
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSnapshot is the part of an order a payment is checked against.
type OrderSnapshot struct {
	ID       uuid.UUID
	BuyerID  uuid.UUID
	SellerID uuid.UUID
	Total    decimal.Decimal
	Currency string
	Status   string
}

// Orders returns domain.ErrOrderNotFound for unknown ids.
type Orders interface {
	Order(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
}

// Result is what a provider reported for a confirm or cancel call.
type Result struct {
	TransactionID string
	Status        string
	Raw           []byte
}

// Toss talks to the Toss Payments API. The transaction id is the payment key.
type Toss interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount decimal.Decimal) (*Result, error)
	Cancel(ctx context.Context, paymentKey, reason string) (*Result, error)
}

// NicePay talks to the NicePay API. The transaction id is the tid.
type NicePay interface {
	Approve(ctx context.Context, tid string, amount decimal.Decimal) (*Result, error)
	Cancel(ctx context.Context, tid, orderID, reason string) (*Result, error)
}

// Intent is a Stripe PaymentIntent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Raw          []byte
}

// WebhookEvent is a verified provider notification reduced to the
// transaction it concerns and the status it reports.
type WebhookEvent struct {
	Type          string
	TransactionID string
	Status        string
}

// Stripe creates and inspects PaymentIntents. The transaction id is the
// intent id.
type Stripe interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, orderID uuid.UUID) (*Intent, error)
	Intent(ctx context.Context, id string) (*Intent, error)
	Refund(ctx context.Context, intentID string) (*Result, error)

	// ParseWebhook verifies the Stripe-Signature header. Events that do not
	// concern a payment come back with an empty Status.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
