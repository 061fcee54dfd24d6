package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipping  Status = "SHIPPING"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping},
	StatusShipping:  {StatusDelivered},
}

// RevenueStatuses are the states whose totals count as revenue.
var RevenueStatuses = []Status{StatusPaid, StatusConfirmed, StatusShipping, StatusDelivered}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Shipped reports whether goods have left the seller.
func (s Status) Shipped() bool {
	return s == StatusShipping || s == StatusDelivered
}

var (
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrNotCancellable    = errors.New("order is past the cancellable states")
)

// Cancellation reasons recorded on order.cancelled.
const (
	ReasonBuyer    = "buyer_cancelled"
	ReasonSeller   = "seller_cancelled"
	ReasonRefunded = "payment_refunded"
	ReasonExpired  = "payment_timeout"
)

// Item is one order line. Name and price are copied from the product when the
// order is placed.
type Item struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	ProductNameEn string
	Quantity      int
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// Order is the order aggregate.
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Total           decimal.Decimal
	Currency        string
	ShippingAddress map[string]any
	Status          Status
	Items           []Item
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Line is a priced order line before the order exists.
type Line struct {
	ProductID     uuid.UUID
	ProductName   string
	ProductNameEn string
	Quantity      int
	UnitPrice     decimal.Decimal
	Currency      string
}

// NewOrder builds a PENDING order from priced lines. Every line must share
// one currency.
func NewOrder(buyerID, sellerID uuid.UUID, address map[string]any, lines []Line, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, errors.New("order needs at least one item")
	}
	if len(address) == 0 {
		return nil, errors.New("shipping address is required")
	}

	o := &Order{
		ID:              uuid.New(),
		OrderNumber:     NewOrderNumber(now),
		BuyerID:         buyerID,
		SellerID:        sellerID,
		Total:           decimal.Zero,
		Currency:        lines[0].Currency,
		ShippingAddress: address,
		Status:          StatusPending,
		Items:           make([]Item, 0, len(lines)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("quantity for product %s must be at least 1", l.ProductID)
		}
		if l.Currency != o.Currency {
			return nil, fmt.Errorf("product %s is priced in %s, order is in %s", l.ProductID, l.Currency, o.Currency)
		}
		subtotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		o.Items = append(o.Items, Item{
			ID:            uuid.New(),
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			ProductNameEn: l.ProductNameEn,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Subtotal:      subtotal,
		})
		o.Total = o.Total.Add(subtotal)
	}
	return o, nil
}

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns ORD-YYYYMMDD-XXXXXXXX with eight random base36 characters.
func NewOrderNumber(now time.Time) string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	var sb strings.Builder
	sb.WriteString("ORD-")
	sb.WriteString(now.UTC().Format("20060102"))
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(orderNumberAlphabet[int(b)%len(orderNumberAlphabet)])
	}
	return sb.String()
}

// TransitionTo moves the order along the status table.
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// Cancellable reports whether the buyer may still cancel.
func (o *Order) Cancellable() bool {
	return o.Status == StatusPending || o.Status == StatusPaid
}

// Cancel moves a PENDING or PAID order to CANCELLED.
func (o *Order) Cancel(now time.Time) error {
	if !o.Cancellable() {
		return ErrNotCancellable
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now
	return nil
}

func (o *Order) InvolvesUser(userID uuid.UUID) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

// Expired reports whether a PENDING order has waited longer than timeout.
func (o *Order) Expired(now time.Time, timeout time.Duration) bool {
	return o.Status == StatusPending && !o.CreatedAt.Add(timeout).After(now)
}

// SellerStats summarises a seller's orders.
// Revenue counts only RevenueStatuses.
type SellerStats struct {
	SellerID     uuid.UUID
	TotalOrders  int
	Revenue      decimal.Decimal
	StatusCounts map[Status]int
}

// PeriodStats aggregates orders created inside a reporting window.
type PeriodStats struct {
	Orders    int
	Completed int
	Cancelled int
	Revenue   decimal.Decimal
}

// ProductSales is one row of the top selling report.
type ProductSales struct {
	ProductID     uuid.UUID
	ProductName   string
	ProductNameEn string
	QuantitySold  int
	Revenue       decimal.Decimal
	OrderCount    int
}

// BuyerSummary is the purchase history aggregate used by admin analytics.
type BuyerSummary struct {
	BuyerID    uuid.UUID
	OrderCount int
	TotalSpent decimal.Decimal
}
