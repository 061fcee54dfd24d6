package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/events"
)

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
)

// OrderCreated is published in the transaction that inserts the order.
// The worker starts the payment expiry workflow from it.
type OrderCreated struct {
	events.Meta
	OrderID  uuid.UUID       `json:"order_id"`
	BuyerID  uuid.UUID       `json:"buyer_id"`
	SellerID uuid.UUID       `json:"seller_id"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type CancelledItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// OrderCancelled is published whenever an order enters CANCELLED. Restock is
// false for orders that had already shipped.
type OrderCancelled struct {
	events.Meta
	OrderID uuid.UUID       `json:"order_id"`
	Items   []CancelledItem `json:"items"`
	Restock bool            `json:"restock"`
	Reason  string          `json:"reason"`
}
