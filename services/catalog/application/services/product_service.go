package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	pkgcache "github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/storage"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/domain/repositories"
	domainsvcs "github.com/spicyjump/storefront/services/catalog/domain/services"
)

// ProductCache is the read-through cache in front of the repository.
// Get returns redis.Nil on a miss.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedProduct, error)
	Set(ctx context.Context, p *pkgcache.CachedProduct) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// ViewCounter buffers product page views outside Postgres.
type ViewCounter interface {
	Incr(ctx context.Context, productID uuid.UUID) error
	Drain(ctx context.Context) (map[uuid.UUID]int64, error)
	Restore(ctx context.Context, counts map[uuid.UUID]int64) error
}

// ImageSigner issues presigned image upload URLs.
type ImageSigner interface {
	PresignProductImage(ctx context.Context, productID uuid.UUID, contentType string) (*storage.UploadURL, error)
}

// ProductService orchestrates the product lifecycle, stock and ratings.
// Writes evict the cached copy; reads are served from Redis when possible.
type ProductService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	cache      ProductCache
	views      ViewCounter
	images     ImageSigner
	log        logger.Logger
	now        func() time.Time
}

func NewProductService(
	products repositories.ProductRepository,
	categories repositories.CategoryRepository,
	cache ProductCache,
	views ViewCounter,
	images ImageSigner,
	log logger.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		cache:      cache,
		views:      views,
		images:     images,
		log:        log,
		now:        time.Now,
	}
}

// Create lists a new DRAFT product for sellerID.
func (s *ProductService) Create(ctx context.Context, p models.NewProductParams) (*models.Product, error) {
	if err := s.requireCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	product, err := models.NewProduct(p, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}
	if err := domainsvcs.ValidateProduct(product); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.log.InfoContext(ctx, "product created", "product_id", product.ID, "seller_id", product.SellerID)
	return product, nil
}

// Get returns a product and records a view. Views are buffered in Redis and
// flushed by FlushViews; a failed increment never fails the read.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.views != nil {
		if err := s.views.Incr(ctx, id); err != nil {
			s.log.WarnContext(ctx, "view counter increment failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// Find returns a product without counting a view. Used by other contexts.
func (s *ProductService) Find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.load(ctx, id)
}

// load implements the read-through cache:
//  1. Check Redis.
//  2. On a miss or a cache error, query Postgres.
//  3. Warm the cache with the Postgres result.
func (s *ProductService) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCached(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "product cache read failed", "product_id", id, "error", err)
		}
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, toCached(p)); err != nil {
			s.log.WarnContext(ctx, "product cache write failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// Update applies a partial update. Only the listing seller may update.
func (s *ProductService) Update(ctx context.Context, sellerID, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.OwnedBy(sellerID) {
		return nil, catalogdomain.ErrNotProductOwner
	}
	if upd.CategoryID != nil && *upd.CategoryID != p.CategoryID {
		if err := s.requireCategory(ctx, *upd.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := p.Apply(upd, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}
	if err := domainsvcs.ValidateProduct(p); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.evict(ctx, id)
	return p, nil
}

// Delete soft deletes a product. Only the listing seller may delete.
func (s *ProductService) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if !p.OwnedBy(sellerID) {
		return catalogdomain.ErrDeleteForbidden
	}
	p.SoftDelete(s.now())
	if err := s.products.Update(ctx, p); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.evict(ctx, id)
	s.log.InfoContext(ctx, "product deleted", "product_id", id, "seller_id", sellerID)
	return nil
}

// ChangeStatus moves a product through the status table. Only the listing
// seller may change its status.
func (s *ProductService) ChangeStatus(ctx context.Context, sellerID, id uuid.UUID, target models.Status) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.OwnedBy(sellerID) {
		return nil, catalogdomain.ErrStatusChangeForbidden
	}
	if err := p.ChangeStatus(models.Status(strings.ToUpper(string(target))), s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidStatusTransition, err)
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product status: %w", err)
	}
	s.evict(ctx, id)
	return p, nil
}

// List returns a page of products matching f.
func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	products, total, err := s.products.List(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// ImageUploadURL presigns an image upload for a product the caller owns.
func (s *ProductService) ImageUploadURL(ctx context.Context, sellerID, id uuid.UUID, contentType string) (*storage.UploadURL, error) {
	if s.images == nil {
		return nil, storage.ErrUnavailable
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.OwnedBy(sellerID) {
		return nil, catalogdomain.ErrNotProductOwner
	}
	u, err := s.images.PresignProductImage(ctx, id, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign image: %w", err)
	}
	return u, nil
}

// DecreaseStock takes qty units for an order. Fails with ErrInsufficientStock
// without changing anything when fewer remain.
func (s *ProductService) DecreaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", catalogdomain.ErrInvalidProduct)
	}
	if err := s.products.DecreaseStock(ctx, id, qty, s.now()); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

// RestoreStock returns qty units, e.g. after a cancelled order.
func (s *ProductService) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := s.products.RestoreStock(ctx, id, qty, s.now()); err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	s.evict(ctx, id)
	return nil
}

// UpdateRating stores a recomputed review aggregate.
func (s *ProductService) UpdateRating(ctx context.Context, id uuid.UUID, avg decimal.Decimal, count int) error {
	if err := s.products.UpdateRating(ctx, id, avg, count); err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	s.evict(ctx, id)
	return nil
}

// FlushViews moves buffered view counts into Postgres and returns how many
// products were updated. A failed write puts the counts back into Redis.
func (s *ProductService) FlushViews(ctx context.Context) (int, error) {
	if s.views == nil {
		return 0, nil
	}
	counts, err := s.views.Drain(ctx)
	if err != nil {
		return 0, fmt.Errorf("drain views: %w", err)
	}
	if len(counts) == 0 {
		return 0, nil
	}
	if err := s.products.AddViews(ctx, counts); err != nil {
		if rerr := s.views.Restore(ctx, counts); rerr != nil {
			s.log.ErrorContext(ctx, "view counts lost", "products", len(counts), "error", rerr)
		}
		return 0, fmt.Errorf("persist views: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ids...); err != nil {
			s.log.WarnContext(ctx, "product cache eviction failed", "products", len(ids), "error", err)
		}
	}
	return len(counts), nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, catalogdomain.ErrCategoryNotFound) {
			return catalogdomain.ErrProductCategoryNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

func (s *ProductService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "product cache eviction failed", "product_id", id, "error", err)
	}
}

func toCached(p *models.Product) *pkgcache.CachedProduct {
	return &pkgcache.CachedProduct{
		ID:            p.ID,
		SellerID:      p.SellerID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		NameEn:        p.NameEn,
		Description:   p.Description,
		DescriptionEn: p.DescriptionEn,
		Price:         p.Price,
		Currency:      p.Currency,
		StockQuantity: p.StockQuantity,
		Images:        p.Images,
		Status:        string(p.Status),
		ViewCount:     p.ViewCount,
		RatingAverage: p.RatingAverage,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func fromCached(c *pkgcache.CachedProduct) *models.Product {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		ID:            c.ID,
		SellerID:      c.SellerID,
		CategoryID:    c.CategoryID,
		Name:          c.Name,
		NameEn:        c.NameEn,
		Description:   c.Description,
		DescriptionEn: c.DescriptionEn,
		Price:         c.Price,
		Currency:      c.Currency,
		StockQuantity: c.StockQuantity,
		Images:        images,
		Status:        models.Status(c.Status),
		ViewCount:     c.ViewCount,
		RatingAverage: c.RatingAverage,
		ReviewCount:   c.ReviewCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
