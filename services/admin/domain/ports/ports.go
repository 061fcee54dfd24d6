// Package ports declares what the admin context needs from the other contexts.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderTotals is the order side of a reporting window.
type OrderTotals struct {
	Orders    int
	Completed int
	Cancelled int
	Revenue   decimal.Decimal
}

type Orders interface {
	PeriodTotals(ctx context.Context, from, to time.Time) (OrderTotals, error)
	BuyerTotals(ctx context.Context, buyerID uuid.UUID) (orders int, spent decimal.Decimal, err error)
}

type Users interface {
	Growth(ctx context.Context, from, to time.Time) (active, joined int, err error)
}

type Reviews interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
