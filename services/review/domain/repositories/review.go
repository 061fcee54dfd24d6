package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/review/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// ReviewFilter narrows a review list. Zero fields do not filter. Lists
// without a UserID only return PUBLISHED reviews.
type ReviewFilter struct {
	ProductID    uuid.NullUUID
	UserID       uuid.NullUUID
	Rating       int
	VerifiedOnly bool
}

// ReviewRepository is the persistence interface for the Review aggregate.
// DELETED reviews are never returned.
type ReviewRepository interface {
	// Create returns domain.ErrAlreadyReviewed when the user already has a
	// live review of the product. Publishes review.changed.
	Create(ctx context.Context, r *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)

	// Save writes r and publishes review.changed with change.
	Save(ctx context.Context, r *models.Review, change string) error

	// List returns matching reviews newest first, with the total count.
	List(ctx context.Context, f ReviewFilter, opts QueryOpts) ([]*models.Review, int, error)

	// RatingCounts counts PUBLISHED reviews of a product per rating.
	RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int, error)

	// ReviewedProducts lists every product that has ever been reviewed.
	ReviewedProducts(ctx context.Context) ([]uuid.UUID, error)

	// CountByUser counts a user's live reviews.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
