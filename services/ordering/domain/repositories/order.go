package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/ordering/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// Cancellation describes why an order entered CANCELLED. The repository turns
// it into an order.cancelled event in the same transaction.
type Cancellation struct {
	Reason  string
	Restock bool
}

// OrderRepository is the persistence interface for the Order aggregate.
type OrderRepository interface {
	// Create inserts the order with its items and publishes order.created.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, opts QueryOpts) ([]*models.Order, int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, opts QueryOpts) ([]*models.Order, int, error)

	// UpdateStatus writes o.Status only if the stored status is still from.
	// A lost race returns domain.ErrInvalidStatusTransition. When cancel is
	// non-nil order.cancelled is published with the update.
	UpdateStatus(ctx context.Context, o *models.Order, from models.Status, cancel *Cancellation) error

	// StalePending returns up to limit PENDING orders created before cutoff, oldest first.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)

	SellerStats(ctx context.Context, sellerID uuid.UUID) (*models.SellerStats, error)
	TopSelling(ctx context.Context, limit int) ([]models.ProductSales, error)
	BuyerSummary(ctx context.Context, buyerID uuid.UUID) (*models.BuyerSummary, error)
	// PeriodStats covers orders created in [from, to).
	PeriodStats(ctx context.Context, from, to time.Time) (*models.PeriodStats, error)

	// HasDelivered reports whether userID received productID in a DELIVERED order.
	HasDelivered(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
