package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	"github.com/spicyjump/storefront/services/ordering/domain/ports"
)

// userDirectory adapts the identity auth service to ports.Users.
type userDirectory struct {
	auth *identitysvcs.AuthService
}

func (u userDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return u.auth.Exists(ctx, id)
}

// productCatalog adapts the catalog product service to ports.Products and
// translates catalog errors into ordering ones.
type productCatalog struct {
	products *catalogsvcs.ProductService
}

func (c productCatalog) Product(ctx context.Context, id uuid.UUID) (*ports.ProductSnapshot, error) {
	p, err := c.products.Find(ctx, id)
	if err != nil {
		return nil, translateCatalogErr(id, err)
	}
	return &ports.ProductSnapshot{
		ID:        p.ID,
		SellerID:  p.SellerID,
		Name:      p.Name,
		NameEn:    p.NameEn,
		Price:     p.Price,
		Currency:  p.Currency,
		Stock:     p.StockQuantity,
		Published: p.IsPublished(),
	}, nil
}

func (c productCatalog) DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	if err := c.products.DecreaseStock(ctx, id, qty); err != nil {
		return translateCatalogErr(id, err)
	}
	return nil
}

func (c productCatalog) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	if err := c.products.RestoreStock(ctx, id, qty); err != nil {
		return translateCatalogErr(id, err)
	}
	return nil
}

func translateCatalogErr(id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		return fmt.Errorf("%w: %s", orderingdomain.ErrProductNotFound, id)
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return fmt.Errorf("%w: product %s", orderingdomain.ErrInsufficientStock, id)
	}
	return fmt.Errorf("catalog: %w", err)
}
