package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/services/admin/domain/ports"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	reviewsvcs "github.com/spicyjump/storefront/services/review/application/services"
)

// orderLedger adapts the ordering service to ports.Orders.
type orderLedger struct {
	orders *orderingsvcs.OrderService
}

func (o orderLedger) PeriodTotals(ctx context.Context, from, to time.Time) (ports.OrderTotals, error) {
	s, err := o.orders.PeriodStats(ctx, from, to)
	if err != nil {
		return ports.OrderTotals{}, err
	}
	return ports.OrderTotals{
		Orders:    s.Orders,
		Completed: s.Completed,
		Cancelled: s.Cancelled,
		Revenue:   s.Revenue,
	}, nil
}

func (o orderLedger) BuyerTotals(ctx context.Context, buyerID uuid.UUID) (int, decimal.Decimal, error) {
	s, err := o.orders.BuyerSummary(ctx, buyerID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return s.OrderCount, s.TotalSpent, nil
}

// userGrowth adapts the identity auth service to ports.Users.
type userGrowth struct {
	auth *identitysvcs.AuthService
}

func (u userGrowth) Growth(ctx context.Context, from, to time.Time) (int, int, error) {
	return u.auth.Growth(ctx, from, to)
}

// reviewCounter adapts the review service to ports.Reviews.
type reviewCounter struct {
	reviews *reviewsvcs.ReviewService
}

func (r reviewCounter) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.reviews.CountByUser(ctx, userID)
}
