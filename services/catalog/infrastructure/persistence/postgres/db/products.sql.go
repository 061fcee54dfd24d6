package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productColumns = `id, seller_id, category_id, name, name_en, description, description_en,
	price, currency, stock_quantity, images, status, view_count, rating_average,
	review_count, created_at, updated_at, deleted_at`

const insertProduct = `-- name: InsertProduct :exec
INSERT INTO catalog.products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

func (q *Queries) InsertProduct(ctx context.Context, arg CatalogProduct) error {
	_, err := q.db.ExecContext(ctx, insertProduct,
		arg.ID,
		arg.SellerID,
		arg.CategoryID,
		arg.Name,
		arg.NameEn,
		arg.Description,
		arg.DescriptionEn,
		arg.Price,
		arg.Currency,
		arg.StockQuantity,
		arg.Images,
		arg.Status,
		arg.ViewCount,
		arg.RatingAverage,
		arg.ReviewCount,
		arg.CreatedAt,
		arg.UpdatedAt,
		arg.DeletedAt,
	)
	return err
}

const getProductByID = `-- name: GetProductByID :one
SELECT ` + productColumns + ` FROM catalog.products
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) GetProductByID(ctx context.Context, id uuid.UUID) (CatalogProduct, error) {
	return scanProduct(q.db.QueryRowContext(ctx, getProductByID, id))
}

const updateProduct = `-- name: UpdateProduct :execrows
UPDATE catalog.products
SET category_id = $2, name = $3, name_en = $4, description = $5, description_en = $6,
    price = $7, currency = $8, stock_quantity = $9, images = $10, status = $11,
    updated_at = $12, deleted_at = $13
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) UpdateProduct(ctx context.Context, arg CatalogProduct) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateProduct,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.NameEn,
		arg.Description,
		arg.DescriptionEn,
		arg.Price,
		arg.Currency,
		arg.StockQuantity,
		arg.Images,
		arg.Status,
		arg.UpdatedAt,
		arg.DeletedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// productFilter is shared by ListProducts and CountProducts.
const productFilter = `
WHERE deleted_at IS NULL
  AND ($1::text = '' OR status = $1)
  AND ($2::uuid IS NULL OR category_id = $2)
  AND ($3::uuid IS NULL OR seller_id = $3)
  AND ($4::text = '' OR name ILIKE '%' || $4 || '%' OR name_en ILIKE '%' || $4 || '%')
`

const listProducts = `-- name: ListProducts :many
SELECT ` + productColumns + ` FROM catalog.products` + productFilter + `
ORDER BY
  CASE WHEN $5::text = 'popular' THEN view_count END DESC,
  CASE WHEN $5::text = 'top_rated' THEN rating_average END DESC,
  CASE WHEN $5::text = 'top_rated' THEN review_count END DESC,
  created_at DESC
LIMIT $6 OFFSET $7
`

type ListProductsParams struct {
	Status     string
	CategoryID uuid.NullUUID
	SellerID   uuid.NullUUID
	Keyword    string
	Sort       string
	Limit      int32
	Offset     int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]CatalogProduct, error) {
	rows, err := q.db.QueryContext(ctx, listProducts,
		arg.Status,
		arg.CategoryID,
		arg.SellerID,
		arg.Keyword,
		arg.Sort,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogProduct
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countProducts = `-- name: CountProducts :one
SELECT count(*) FROM catalog.products` + productFilter

type CountProductsParams struct {
	Status     string
	CategoryID uuid.NullUUID
	SellerID   uuid.NullUUID
	Keyword    string
}

func (q *Queries) CountProducts(ctx context.Context, arg CountProductsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProducts,
		arg.Status,
		arg.CategoryID,
		arg.SellerID,
		arg.Keyword,
	).Scan(&count)
	return count, err
}

const decreaseStock = `-- name: DecreaseStock :execrows
UPDATE catalog.products
SET stock_quantity = stock_quantity - $2,
    status = CASE WHEN stock_quantity - $2 = 0 AND status = 'PUBLISHED' THEN 'SOLDOUT' ELSE status END,
    updated_at = $3
WHERE id = $1 AND deleted_at IS NULL AND stock_quantity >= $2
`

func (q *Queries) DecreaseStock(ctx context.Context, id uuid.UUID, qty int32, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, decreaseStock, id, qty, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const restoreStock = `-- name: RestoreStock :execrows
UPDATE catalog.products
SET stock_quantity = stock_quantity + $2,
    status = CASE WHEN status = 'SOLDOUT' THEN 'PUBLISHED' ELSE status END,
    updated_at = $3
WHERE id = $1 AND deleted_at IS NULL
`

func (q *Queries) RestoreStock(ctx context.Context, id uuid.UUID, qty int32, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, restoreStock, id, qty, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRating = `-- name: UpdateRating :execrows
UPDATE catalog.products
SET rating_average = $2, review_count = $3
WHERE id = $1
`

func (q *Queries) UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int32) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRating, id, avg, count)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const addViews = `-- name: AddViews :exec
UPDATE catalog.products SET view_count = view_count + $2 WHERE id = $1
`

func (q *Queries) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	_, err := q.db.ExecContext(ctx, addViews, id, n)
	return err
}

func scanProduct(row scanner) (CatalogProduct, error) {
	var i CatalogProduct
	err := row.Scan(
		&i.ID,
		&i.SellerID,
		&i.CategoryID,
		&i.Name,
		&i.NameEn,
		&i.Description,
		&i.DescriptionEn,
		&i.Price,
		&i.Currency,
		&i.StockQuantity,
		&i.Images,
		&i.Status,
		&i.ViewCount,
		&i.RatingAverage,
		&i.ReviewCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.DeletedAt,
	)
	return i, err
}
