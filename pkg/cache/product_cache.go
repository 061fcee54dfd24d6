package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// ProductCacheTTL is the time-to-live for cached products.
	ProductCacheTTL = time.Hour

	productCacheKeyPrefix = "product"
)

// CachedProduct is the product read model stored in Redis as a hash.
// ViewCount is the persisted count; newer views sit in ViewCounter until flushed.
type CachedProduct struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	CategoryID    uuid.UUID
	Name          string
	NameEn        string
	Description   string
	DescriptionEn string
	Price         decimal.Decimal
	Currency      string
	StockQuantity int
	Images        []string
	Status        string
	ViewCount     int64
	RatingAverage decimal.Decimal
	ReviewCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductCache is the read-through cache in front of the catalog repository.
// Key format: "product:{productID}"
type ProductCache struct {
	client *RedisClient
}

// NewProductCache creates a ProductCache backed by r.
func NewProductCache(r *RedisClient) *ProductCache {
	return &ProductCache{client: r}
}

// Get returns the cached product or redis.Nil when it is not cached.
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*CachedProduct, error) {
	vals, err := c.client.Client().HGetAll(ctx, productKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeProduct(vals)
}

// Set replaces p with ProductCacheTTL in a single MULTI/EXEC.
func (c *ProductCache) Set(ctx context.Context, p *CachedProduct) error {
	fields, err := encodeProduct(p)
	if err != nil {
		return err
	}
	key := productKey(p.ID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ProductCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete evicts products. Missing keys are not an error.
func (c *ProductCache) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.client.Client().Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", productCacheKeyPrefix, id)
}

func encodeProduct(p *CachedProduct) (map[string]any, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, fmt.Errorf("cache encode images: %w", err)
	}
	return map[string]any{
		"id":             p.ID.String(),
		"seller_id":      p.SellerID.String(),
		"category_id":    p.CategoryID.String(),
		"name":           p.Name,
		"name_en":        p.NameEn,
		"description":    p.Description,
		"description_en": p.DescriptionEn,
		"price":          p.Price.String(),
		"currency":       p.Currency,
		"stock_quantity": strconv.Itoa(p.StockQuantity),
		"images":         string(images),
		"status":         p.Status,
		"view_count":     strconv.FormatInt(p.ViewCount, 10),
		"rating_average": p.RatingAverage.String(),
		"review_count":   strconv.Itoa(p.ReviewCount),
		"created_at":     p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":     p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decodeProduct(vals map[string]string) (*CachedProduct, error) {
	var (
		p   CachedProduct
		err error
	)
	if p.ID, err = uuid.Parse(vals["id"]); err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	if p.SellerID, err = uuid.Parse(vals["seller_id"]); err != nil {
		return nil, fmt.Errorf("cache parse seller_id: %w", err)
	}
	if p.CategoryID, err = uuid.Parse(vals["category_id"]); err != nil {
		return nil, fmt.Errorf("cache parse category_id: %w", err)
	}
	if p.Price, err = decimal.NewFromString(vals["price"]); err != nil {
		return nil, fmt.Errorf("cache parse price: %w", err)
	}
	if p.RatingAverage, err = decimal.NewFromString(vals["rating_average"]); err != nil {
		return nil, fmt.Errorf("cache parse rating_average: %w", err)
	}
	if p.StockQuantity, err = strconv.Atoi(vals["stock_quantity"]); err != nil {
		return nil, fmt.Errorf("cache parse stock_quantity: %w", err)
	}
	if p.ReviewCount, err = strconv.Atoi(vals["review_count"]); err != nil {
		return nil, fmt.Errorf("cache parse review_count: %w", err)
	}
	if p.ViewCount, err = strconv.ParseInt(vals["view_count"], 10, 64); err != nil {
		return nil, fmt.Errorf("cache parse view_count: %w", err)
	}
	if err := json.Unmarshal([]byte(vals["images"]), &p.Images); err != nil {
		return nil, fmt.Errorf("cache parse images: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, vals["created_at"]); err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, vals["updated_at"]); err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	p.Name = vals["name"]
	p.NameEn = vals["name_en"]
	p.Description = vals["description"]
	p.DescriptionEn = vals["description_en"]
	p.Currency = vals["currency"]
	p.Status = vals["status"]
	return &p, nil
}
