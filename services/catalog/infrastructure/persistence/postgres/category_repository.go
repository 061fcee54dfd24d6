package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/database"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/infrastructure/persistence/postgres/db"
)

// CategoryRepository implements repositories.CategoryRepository against PostgreSQL.
type CategoryRepository struct {
	db *database.Database
}

func NewCategoryRepository(database *database.Database) *CategoryRepository {
	return &CategoryRepository{db: database}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := db.New(r.db.DB()).ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return rowsToCategories(rows), nil
}

// GetByID returns ErrCategoryNotFound when no row matches.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row, err := db.New(r.db.DB()).GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return rowToCategory(row), nil
}

func (r *CategoryRepository) Children(ctx context.Context, parentID uuid.UUID) ([]*models.Category, error) {
	rows, err := db.New(r.db.DB()).ListChildCategories(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("query child categories: %w", err)
	}
	return rowsToCategories(rows), nil
}

func (r *CategoryRepository) Search(ctx context.Context, keyword string) ([]*models.Category, error) {
	rows, err := db.New(r.db.DB()).SearchCategories(ctx, escapeLike(keyword))
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	return rowsToCategories(rows), nil
}

func rowsToCategories(rows []db.CatalogCategory) []*models.Category {
	out := make([]*models.Category, len(rows))
	for i, row := range rows {
		out[i] = rowToCategory(row)
	}
	return out
}

func rowToCategory(row db.CatalogCategory) *models.Category {
	c := &models.Category{
		ID:        row.ID,
		Name:      row.Name,
		NameEn:    row.NameEn.String,
		SortOrder: int(row.SortOrder),
		CreatedAt: row.CreatedAt,
	}
	if row.ParentID.Valid {
		parent := row.ParentID.UUID
		c.ParentID = &parent
	}
	return c
}
