// Package ports declares what ordering needs from other contexts. Adapters in
// the application layer implement them over the identity and catalog services.
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Users answers whether an account exists.
type Users interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProductSnapshot is the part of a product an order line copies.
type ProductSnapshot struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Name      string
	NameEn    string
	Price     decimal.Decimal
	Currency  string
	Stock     int
	Published bool
}

// Products reads and reserves catalog stock. Product returns
// domain.ErrProductNotFound and DecreaseStock domain.ErrInsufficientStock.
type Products interface {
	Product(ctx context.Context, id uuid.UUID) (*ProductSnapshot, error)
	DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
}
