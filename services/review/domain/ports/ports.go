// Package ports declares what review needs from identity, catalog and
// ordering.
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Users interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Products returns domain.ErrProductNotFound from UpdateRating when the
// product is gone.
type Products interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error
}

type Purchases interface {
	// HasDeliveredPurchase reports whether userID received an order
	// containing productID.
	HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
