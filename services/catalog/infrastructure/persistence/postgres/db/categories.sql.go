package db

import (
	"context"

	"github.com/google/uuid"
)

const categoryColumns = `id, parent_id, name, name_en, sort_order, created_at`

const listCategories = `-- name: ListCategories :many
SELECT ` + categoryColumns + ` FROM catalog.categories
ORDER BY sort_order, name
`

func (q *Queries) ListCategories(ctx context.Context) ([]CatalogCategory, error) {
	return q.queryCategories(ctx, listCategories)
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT ` + categoryColumns + ` FROM catalog.categories WHERE id = $1
`

func (q *Queries) GetCategoryByID(ctx context.Context, id uuid.UUID) (CatalogCategory, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategoryByID, id))
}

const listChildCategories = `-- name: ListChildCategories :many
SELECT ` + categoryColumns + ` FROM catalog.categories
WHERE parent_id = $1
ORDER BY sort_order, name
`

func (q *Queries) ListChildCategories(ctx context.Context, parentID uuid.UUID) ([]CatalogCategory, error) {
	return q.queryCategories(ctx, listChildCategories, parentID)
}

const searchCategories = `-- name: SearchCategories :many
SELECT ` + categoryColumns + ` FROM catalog.categories
WHERE name ILIKE '%' || $1 || '%' OR name_en ILIKE '%' || $1 || '%'
ORDER BY sort_order, name
`

func (q *Queries) SearchCategories(ctx context.Context, pattern string) ([]CatalogCategory, error) {
	return q.queryCategories(ctx, searchCategories, pattern)
}

func (q *Queries) queryCategories(ctx context.Context, query string, args ...any) ([]CatalogCategory, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogCategory
	for rows.Next() {
		i, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (CatalogCategory, error) {
	var i CatalogCategory
	err := row.Scan(
		&i.ID,
		&i.ParentID,
		&i.Name,
		&i.NameEn,
		&i.SortOrder,
		&i.CreatedAt,
	)
	return i, err
}
