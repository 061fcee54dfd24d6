package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	reviewdomain "github.com/spicyjump/storefront/services/review/domain"
)

// userDirectory adapts the identity auth service to ports.Users.
type userDirectory struct {
	auth *identitysvcs.AuthService
}

func (u userDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return u.auth.Exists(ctx, id)
}

// productCatalog adapts the catalog product service to ports.Products.
type productCatalog struct {
	products *catalogsvcs.ProductService
}

func (c productCatalog) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := c.products.Find(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		return false, nil
	}
	return false, fmt.Errorf("catalog: %w", err)
}

func (c productCatalog) UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error {
	err := c.products.UpdateRating(ctx, id, avg, count)
	if errors.Is(err, catalogdomain.ErrProductNotFound) {
		return fmt.Errorf("%w: %s", reviewdomain.ErrProductNotFound, id)
	}
	return err
}

// purchaseHistory adapts the ordering service to ports.Purchases.
type purchaseHistory struct {
	orders *orderingsvcs.OrderService
}

func (p purchaseHistory) HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return p.orders.HasDeliveredPurchase(ctx, userID, productID)
}
