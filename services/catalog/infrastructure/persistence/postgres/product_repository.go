package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/database"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/domain/repositories"
	"github.com/spicyjump/storefront/services/catalog/infrastructure/persistence/postgres/db"
)

const foreignKeyViolation = "23503"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user keywords match literally inside ILIKE patterns.
func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}

// ProductRepository implements repositories.ProductRepository against PostgreSQL.
type ProductRepository struct {
	db *database.Database
}

func NewProductRepository(database *database.Database) *ProductRepository {
	return &ProductRepository{db: database}
}

// Create inserts p. A category foreign key violation is ErrProductCategoryNotFound.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	row, err := productToRow(p)
	if err != nil {
		return err
	}
	if err := db.New(r.db.DB()).InsertProduct(ctx, row); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return catalogdomain.ErrProductCategoryNotFound
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := db.New(r.db.DB()).GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return rowToProduct(row)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	row, err := productToRow(p)
	if err != nil {
		return err
	}
	n, err := db.New(r.db.DB()).UpdateProduct(ctx, row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return catalogdomain.ErrProductCategoryNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	q := db.New(r.db.DB())
	keyword := escapeLike(f.Keyword)
	category := nullUUID(f.CategoryID)
	seller := nullUUID(f.SellerID)
	sortBy := f.Sort
	if sortBy == "" {
		sortBy = repositories.SortNewest
	}

	rows, err := q.ListProducts(ctx, db.ListProductsParams{
		Status:     string(f.Status),
		CategoryID: category,
		SellerID:   seller,
		Keyword:    keyword,
		Sort:       string(sortBy),
		Limit:      int32(opts.Limit),
		Offset:     int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}

	total, err := q.CountProducts(ctx, db.CountProductsParams{
		Status:     string(f.Status),
		CategoryID: category,
		SellerID:   seller,
		Keyword:    keyword,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	products := make([]*models.Product, 0, len(rows))
	for _, row := range rows {
		p, err := rowToProduct(row)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, int(total), nil
}

// DecreaseStock relies on the stock_quantity >= qty guard in the UPDATE, so
// concurrent orders can never oversell. When nothing was updated the product
// is re-read to tell a missing product from a short one.
func (r *ProductRepository) DecreaseStock(ctx context.Context, id uuid.UUID, qty int, now time.Time) error {
	q := db.New(r.db.DB())
	n, err := q.DecreaseStock(ctx, id, int32(qty), now.UTC())
	if err != nil {
		return fmt.Errorf("decrease stock: %w", err)
	}
	if n > 0 {
		return nil
	}
	row, err := q.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogdomain.ErrProductNotFound
		}
		return fmt.Errorf("query product: %w", err)
	}
	return fmt.Errorf("%w: product %s has %d left, %d requested",
		catalogdomain.ErrInsufficientStock, id, row.StockQuantity, qty)
}

func (r *ProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int, now time.Time) error {
	n, err := db.New(r.db.DB()).RestoreStock(ctx, id, int32(qty), now.UTC())
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error {
	n, err := db.New(r.db.DB()).UpdateRating(ctx, id, avg.Round(2), int32(count))
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) AddViews(ctx context.Context, counts map[uuid.UUID]int64) error {
	if len(counts) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		for id, n := range counts {
			if err := q.AddViews(ctx, id, n); err != nil {
				return fmt.Errorf("add views to %s: %w", id, err)
			}
		}
		return nil
	})
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func productToRow(p *models.Product) (db.CatalogProduct, error) {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return db.CatalogProduct{}, fmt.Errorf("encode images: %w", err)
	}
	row := db.CatalogProduct{
		ID:            p.ID,
		SellerID:      p.SellerID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		NameEn:        nullString(p.NameEn),
		Description:   p.Description,
		DescriptionEn: nullString(p.DescriptionEn),
		Price:         p.Price,
		Currency:      p.Currency,
		StockQuantity: int32(p.StockQuantity),
		Images:        raw,
		Status:        string(p.Status),
		ViewCount:     p.ViewCount,
		RatingAverage: p.RatingAverage,
		ReviewCount:   int32(p.ReviewCount),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.DeletedAt != nil {
		row.DeletedAt = sql.NullTime{Time: *p.DeletedAt, Valid: true}
	}
	return row, nil
}

func rowToProduct(row db.CatalogProduct) (*models.Product, error) {
	p := &models.Product{
		ID:            row.ID,
		SellerID:      row.SellerID,
		CategoryID:    row.CategoryID,
		Name:          row.Name,
		NameEn:        row.NameEn.String,
		Description:   row.Description,
		DescriptionEn: row.DescriptionEn.String,
		Price:         row.Price,
		Currency:      row.Currency,
		StockQuantity: int(row.StockQuantity),
		Images:        []string{},
		Status:        models.Status(row.Status),
		ViewCount:     row.ViewCount,
		RatingAverage: row.RatingAverage,
		ReviewCount:   int(row.ReviewCount),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if len(row.Images) > 0 {
		if err := json.Unmarshal(row.Images, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images of %s: %w", row.ID, err)
		}
	}
	if row.DeletedAt.Valid {
		t := row.DeletedAt.Time
		p.DeletedAt = &t
	}
	return p, nil
}
