package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/services/catalog/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// ProductSort selects the ordering of a product list.
type ProductSort string

const (
	SortNewest   ProductSort = "newest"
	SortPopular  ProductSort = "popular"
	SortTopRated ProductSort = "top_rated"
)

// ProductFilter narrows a product list. Zero values do not filter.
// Soft-deleted products are never returned.
type ProductFilter struct {
	Status     models.Status
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Keyword    string
	Sort       ProductSort
}

// CategoryRepository is read-only; categories are seeded by migrations.
type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error)
	Search(ctx context.Context, keyword string) ([]*models.Category, error)
}

// ProductRepository is the persistence interface for the Product aggregate.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error

	// GetByID returns ErrProductNotFound for missing and soft-deleted products.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// Update persists every mutable field, including status and deleted_at.
	Update(ctx context.Context, p *models.Product) error

	// List returns a page of products and the total matching count.
	List(ctx context.Context, f ProductFilter, opts QueryOpts) ([]*models.Product, int, error)

	// DecreaseStock atomically removes qty units, marking the product SOLDOUT
	// when it reaches zero. Returns ErrInsufficientStock without changing anything
	// when fewer than qty units remain.
	DecreaseStock(ctx context.Context, id uuid.UUID, qty int, now time.Time) error

	// RestoreStock atomically adds qty units back and re-publishes a SOLDOUT product.
	RestoreStock(ctx context.Context, id uuid.UUID, qty int, now time.Time) error

	UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error

	// AddViews increments view_count by the buffered amounts in one transaction.
	AddViews(ctx context.Context, counts map[uuid.UUID]int64) error
}
