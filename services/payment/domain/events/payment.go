package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/events"
)

const (
	TopicPaymentCompleted = "payment.completed"
	TopicPaymentRefunded  = "payment.refunded"
)

// PaymentCompleted moves the order to PAID.
type PaymentCompleted struct {
	events.Meta
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Provider  string          `json:"provider"`
}

// PaymentRefunded cancels the order.
type PaymentRefunded struct {
	events.Meta
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}
