package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	reviewdomain "github.com/spicyjump/storefront/services/review/domain"
	domainevents "github.com/spicyjump/storefront/services/review/domain/events"
	"github.com/spicyjump/storefront/services/review/domain/models"
	"github.com/spicyjump/storefront/services/review/domain/repositories"
	"github.com/spicyjump/storefront/services/review/infrastructure/persistence/postgres/db"
)

const uniqueViolation = "23505"

// ReviewRepository implements repositories.ReviewRepository against PostgreSQL.
type ReviewRepository struct {
	db  *database.Database
	pub events.TxPublisher
}

// NewReviewRepository returns a ReviewRepository. A nil pub skips events.
func NewReviewRepository(database *database.Database, pub events.TxPublisher) *ReviewRepository {
	return &ReviewRepository{db: database, pub: pub}
}

// Create relies on the partial unique index over live (product, user) pairs.
func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	images, err := encodeImages(rv.Images)
	if err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := db.New(tx).InsertReview(ctx, db.ReviewReview{
			ID:               rv.ID,
			ProductID:        rv.ProductID,
			UserID:           rv.UserID,
			Rating:           int32(rv.Rating),
			Title:            rv.Title,
			Content:          rv.Content,
			Images:           images,
			VerifiedPurchase: rv.VerifiedPurchase,
			Status:           string(rv.Status),
			CreatedAt:        rv.CreatedAt,
			UpdatedAt:        rv.UpdatedAt,
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return reviewdomain.ErrAlreadyReviewed
			}
			return fmt.Errorf("insert review: %w", err)
		}
		return r.publish(ctx, tx, rv, domainevents.ChangeCreated)
	})
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	row, err := db.New(r.db.DB()).GetReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reviewdomain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("query review: %w", err)
	}
	return rowToReview(row)
}

func (r *ReviewRepository) Save(ctx context.Context, rv *models.Review, change string) error {
	images, err := encodeImages(rv.Images)
	if err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateReview(ctx, db.UpdateReviewParams{
			ID:        rv.ID,
			Rating:    int32(rv.Rating),
			Title:     rv.Title,
			Content:   rv.Content,
			Images:    images,
			Status:    string(rv.Status),
			UpdatedAt: rv.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		if n == 0 {
			return reviewdomain.ErrReviewNotFound
		}
		return r.publish(ctx, tx, rv, change)
	})
}

func (r *ReviewRepository) List(ctx context.Context, f repositories.ReviewFilter, opts repositories.QueryOpts) ([]*models.Review, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListReviews(ctx, db.ListReviewsParams{
		ProductID:    f.ProductID,
		UserID:       f.UserID,
		Rating:       int32(f.Rating),
		VerifiedOnly: f.VerifiedOnly,
		Limit:        int32(opts.Limit),
		Offset:       int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query reviews: %w", err)
	}
	total, err := q.CountReviews(ctx, db.CountReviewsParams{
		ProductID:    f.ProductID,
		UserID:       f.UserID,
		Rating:       int32(f.Rating),
		VerifiedOnly: f.VerifiedOnly,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	out := make([]*models.Review, 0, len(rows))
	for _, row := range rows {
		rv, err := rowToReview(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, int(total), nil
}

func (r *ReviewRepository) RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int, error) {
	rows, err := db.New(r.db.DB()).RatingCounts(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("query rating counts: %w", err)
	}
	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[int(row.Rating)] = int(row.Count)
	}
	return counts, nil
}

func (r *ReviewRepository) ReviewedProducts(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := db.New(r.db.DB()).ListReviewedProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("query reviewed products: %w", err)
	}
	return ids, nil
}

func (r *ReviewRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := db.New(r.db.DB()).CountUserReviews(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count user reviews: %w", err)
	}
	return int(n), nil
}

func (r *ReviewRepository) publish(ctx context.Context, tx *sql.Tx, rv *models.Review, change string) error {
	if r.pub == nil {
		return nil
	}
	if err := r.pub.PublishTx(ctx, tx, domainevents.TopicReviewChanged, domainevents.ReviewChanged{
		Meta:      events.NewMeta(rv.UpdatedAt),
		ReviewID:  rv.ID,
		ProductID: rv.ProductID,
		Change:    change,
	}); err != nil {
		return fmt.Errorf("publish review changed: %w", err)
	}
	return nil
}

func encodeImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	return raw, nil
}

func rowToReview(row db.ReviewReview) (*models.Review, error) {
	rv := &models.Review{
		ID:               row.ID,
		ProductID:        row.ProductID,
		UserID:           row.UserID,
		Rating:           int(row.Rating),
		Title:            row.Title,
		Content:          row.Content,
		Images:           []string{},
		VerifiedPurchase: row.VerifiedPurchase,
		Status:           models.Status(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if len(row.Images) > 0 {
		if err := json.Unmarshal(row.Images, &rv.Images); err != nil {
			return nil, fmt.Errorf("decode images of review %s: %w", row.ID, err)
		}
	}
	return rv, nil
}
