package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type scanner interface {
	Scan(dest ...any) error
}

const reviewColumns = `id, product_id, user_id, rating, title, content, images, is_verified_purchase,
	status, created_at, updated_at`

const insertReview = `-- name: InsertReview :exec
INSERT INTO review.reviews (` + reviewColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (q *Queries) InsertReview(ctx context.Context, arg ReviewReview) error {
	_, err := q.db.ExecContext(ctx, insertReview,
		arg.ID,
		arg.ProductID,
		arg.UserID,
		arg.Rating,
		arg.Title,
		arg.Content,
		arg.Images,
		arg.VerifiedPurchase,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getReviewByID = `-- name: GetReviewByID :one
SELECT ` + reviewColumns + ` FROM review.reviews WHERE id = $1 AND status <> 'DELETED'
`

func (q *Queries) GetReviewByID(ctx context.Context, id uuid.UUID) (ReviewReview, error) {
	return scanReview(q.db.QueryRowContext(ctx, getReviewByID, id))
}

const updateReview = `-- name: UpdateReview :execrows
UPDATE review.reviews
SET rating = $2, title = $3, content = $4, images = $5, status = $6, updated_at = $7
WHERE id = $1 AND status <> 'DELETED'
`

type UpdateReviewParams struct {
	ID        uuid.UUID
	Rating    int32
	Title     string
	Content   string
	Images    []byte
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateReview(ctx context.Context, arg UpdateReviewParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateReview,
		arg.ID,
		arg.Rating,
		arg.Title,
		arg.Content,
		arg.Images,
		arg.Status,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// reviewFilter shows HIDDEN reviews only when listing one user's reviews.
const reviewFilter = `
WHERE status <> 'DELETED'
  AND ($2::uuid IS NOT NULL OR status = 'PUBLISHED')
  AND ($1::uuid IS NULL OR product_id = $1)
  AND ($2::uuid IS NULL OR user_id = $2)
  AND ($3::int = 0 OR rating = $3)
  AND (NOT $4::bool OR is_verified_purchase)
`

const listReviews = `-- name: ListReviews :many
SELECT ` + reviewColumns + ` FROM review.reviews` + reviewFilter + `
ORDER BY created_at DESC, id
LIMIT $5 OFFSET $6
`

type ListReviewsParams struct {
	ProductID    uuid.NullUUID
	UserID       uuid.NullUUID
	Rating       int32
	VerifiedOnly bool
	Limit        int32
	Offset       int32
}

func (q *Queries) ListReviews(ctx context.Context, arg ListReviewsParams) ([]ReviewReview, error) {
	rows, err := q.db.QueryContext(ctx, listReviews,
		arg.ProductID,
		arg.UserID,
		arg.Rating,
		arg.VerifiedOnly,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReviewReview
	for rows.Next() {
		i, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countReviews = `-- name: CountReviews :one
SELECT count(*) FROM review.reviews` + reviewFilter

type CountReviewsParams struct {
	ProductID    uuid.NullUUID
	UserID       uuid.NullUUID
	Rating       int32
	VerifiedOnly bool
}

func (q *Queries) CountReviews(ctx context.Context, arg CountReviewsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countReviews,
		arg.ProductID,
		arg.UserID,
		arg.Rating,
		arg.VerifiedOnly,
	).Scan(&count)
	return count, err
}

const ratingCounts = `-- name: RatingCounts :many
SELECT rating, count(*) FROM review.reviews
WHERE product_id = $1 AND status = 'PUBLISHED'
GROUP BY rating
`

type RatingCountsRow struct {
	Rating int32
	Count  int64
}

func (q *Queries) RatingCounts(ctx context.Context, productID uuid.UUID) ([]RatingCountsRow, error) {
	rows, err := q.db.QueryContext(ctx, ratingCounts, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RatingCountsRow
	for rows.Next() {
		var i RatingCountsRow
		if err := rows.Scan(&i.Rating, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listReviewedProducts = `-- name: ListReviewedProducts :many
SELECT DISTINCT product_id FROM review.reviews ORDER BY product_id
`

func (q *Queries) ListReviewedProducts(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listReviewedProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

const countUserReviews = `-- name: CountUserReviews :one
SELECT count(*) FROM review.reviews WHERE user_id = $1 AND status <> 'DELETED'
`

func (q *Queries) CountUserReviews(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUserReviews, userID).Scan(&count)
	return count, err
}

func scanReview(row scanner) (ReviewReview, error) {
	var i ReviewReview
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.UserID,
		&i.Rating,
		&i.Title,
		&i.Content,
		&i.Images,
		&i.VerifiedPurchase,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
