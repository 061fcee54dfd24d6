package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/logger"
	reviewdomain "github.com/spicyjump/storefront/services/review/domain"
	domainevents "github.com/spicyjump/storefront/services/review/domain/events"
	"github.com/spicyjump/storefront/services/review/domain/models"
	"github.com/spicyjump/storefront/services/review/domain/ports"
	"github.com/spicyjump/storefront/services/review/domain/repositories"
)

// ReviewService writes reviews and keeps product ratings in step with them.
type ReviewService struct {
	reviews   repositories.ReviewRepository
	users     ports.Users
	products  ports.Products
	purchases ports.Purchases
	log       logger.Logger
	now       func() time.Time
}

func NewReviewService(
	reviews repositories.ReviewRepository,
	users ports.Users,
	products ports.Products,
	purchases ports.Purchases,
	log logger.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		users:     users,
		products:  products,
		purchases: purchases,
		log:       log,
		now:       time.Now,
	}
}

// Create publishes a review. It is marked as a verified purchase when the
// user has received the product.
func (s *ReviewService) Create(ctx context.Context, p models.NewReviewParams) (*models.Review, error) {
	ok, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", reviewdomain.ErrUserNotFound, p.UserID)
	}
	ok, err = s.products.Exists(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", reviewdomain.ErrProductNotFound, p.ProductID)
	}

	verified, err := s.purchases.HasDeliveredPurchase(ctx, p.UserID, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}
	r, err := models.NewReview(p, verified, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reviewdomain.ErrInvalidReview, err)
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "review created",
		"review_id", r.ID,
		"product_id", r.ProductID,
		"rating", r.Rating,
		"verified", verified,
	)
	return r, nil
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// Update changes the caller's own review.
func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, upd models.ReviewUpdate) (*models.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, reviewdomain.ErrNotReviewAuthor
	}
	if err := r.Apply(upd, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", reviewdomain.ErrInvalidReview, err)
	}
	if err := s.reviews.Save(ctx, r, domainevents.ChangeUpdated); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete soft-deletes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, admin bool, id uuid.UUID) error {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !admin && r.UserID != userID {
		return reviewdomain.ErrDeleteForbidden
	}
	r.Delete(s.now())
	if err := s.reviews.Save(ctx, r, domainevents.ChangeDeleted); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "review deleted", "review_id", id, "by", userID, "admin", admin)
	return nil
}

func (s *ReviewService) ByProduct(ctx context.Context, productID uuid.UUID, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	return s.reviews.List(ctx, repositories.ReviewFilter{ProductID: nullUUID(productID)}, opts)
}

// Mine includes the caller's HIDDEN reviews.
func (s *ReviewService) Mine(ctx context.Context, userID uuid.UUID, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	return s.reviews.List(ctx, repositories.ReviewFilter{UserID: nullUUID(userID)}, opts)
}

func (s *ReviewService) ByRating(ctx context.Context, productID uuid.UUID, rating int, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, 0, fmt.Errorf("%w: rating must be between %d and %d", reviewdomain.ErrInvalidReview, models.MinRating, models.MaxRating)
	}
	return s.reviews.List(ctx, repositories.ReviewFilter{ProductID: nullUUID(productID), Rating: rating}, opts)
}

func (s *ReviewService) Verified(ctx context.Context, productID uuid.UUID, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	return s.reviews.List(ctx, repositories.ReviewFilter{ProductID: nullUUID(productID), VerifiedOnly: true}, opts)
}

func (s *ReviewService) Latest(ctx context.Context, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	return s.reviews.List(ctx, repositories.ReviewFilter{}, opts)
}

// Summary aggregates the PUBLISHED reviews of a product.
func (s *ReviewService) Summary(ctx context.Context, productID uuid.UUID) (*models.RatingSummary, error) {
	counts, err := s.reviews.RatingCounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	return models.NewRatingSummary(productID, counts), nil
}

// CountByUser counts a user's live reviews.
func (s *ReviewService) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.reviews.CountByUser(ctx, userID)
}

// SyncProductRating recomputes a product's rating and stores it in the
// catalog. A product that no longer exists is skipped.
func (s *ReviewService) SyncProductRating(ctx context.Context, productID uuid.UUID) error {
	sum, err := s.Summary(ctx, productID)
	if err != nil {
		return err
	}
	err = s.products.UpdateRating(ctx, productID, sum.Average, sum.Count)
	if errors.Is(err, reviewdomain.ErrProductNotFound) {
		s.log.WarnContext(ctx, "rating sync skipped, product is gone", "product_id", productID)
		return nil
	}
	if err != nil {
		return err
	}
	s.log.DebugContext(ctx, "product rating synced",
		"product_id", productID,
		"average", sum.Average.String(),
		"count", sum.Count,
	)
	return nil
}

// ReconcileRatings resyncs every reviewed product and returns how many were
// written. One failing product does not stop the run.
func (s *ReviewService) ReconcileRatings(ctx context.Context) (int, error) {
	ids, err := s.reviews.ReviewedProducts(ctx)
	if err != nil {
		return 0, err
	}
	var (
		synced int
		errs   []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.SyncProductRating(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("product %s: %w", id, err))
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}
