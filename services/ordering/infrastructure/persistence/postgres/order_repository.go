package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/database"
	"github.com/spicyjump/storefront/pkg/events"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	domainevents "github.com/spicyjump/storefront/services/ordering/domain/events"
	"github.com/spicyjump/storefront/services/ordering/domain/models"
	"github.com/spicyjump/storefront/services/ordering/domain/repositories"
	"github.com/spicyjump/storefront/services/ordering/infrastructure/persistence/postgres/db"
)

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
type OrderRepository struct {
	db  *database.Database
	pub events.TxPublisher
}

// NewOrderRepository returns an OrderRepository. Events are written through
// pub in the same transaction as the order rows; a nil pub skips them.
func NewOrderRepository(database *database.Database, pub events.TxPublisher) *OrderRepository {
	return &OrderRepository{db: database, pub: pub}
}

// Create inserts the order and its items and publishes order.created.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertOrder(ctx, db.OrderingOrder{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			BuyerID:         o.BuyerID,
			SellerID:        o.SellerID,
			Total:           o.Total,
			Currency:        o.Currency,
			ShippingAddress: address,
			Status:          string(o.Status),
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			if err := q.InsertOrderItem(ctx, db.OrderingOrderItem{
				ID:            it.ID,
				OrderID:       o.ID,
				ProductID:     it.ProductID,
				ProductName:   it.ProductName,
				ProductNameEn: nullString(it.ProductNameEn),
				Quantity:      int32(it.Quantity),
				UnitPrice:     it.UnitPrice,
				Subtotal:      it.Subtotal,
			}); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		if r.pub == nil {
			return nil
		}
		if err := r.pub.PublishTx(ctx, tx, domainevents.TopicOrderCreated, domainevents.OrderCreated{
			Meta:     events.NewMeta(o.CreatedAt),
			OrderID:  o.ID,
			BuyerID:  o.BuyerID,
			SellerID: o.SellerID,
			Total:    o.Total,
			Currency: o.Currency,
		}); err != nil {
			return fmt.Errorf("publish order created: %w", err)
		}
		return nil
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	q := db.New(r.db.DB())
	row, err := q.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderingdomain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	return r.withItems(ctx, q, row)
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListOrdersByBuyer(ctx, buyerID, int32(opts.Limit), int32(opts.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("query buyer orders: %w", err)
	}
	total, err := q.CountOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count buyer orders: %w", err)
	}
	orders, err := r.allWithItems(ctx, q, rows)
	return orders, int(total), err
}

func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListOrdersBySeller(ctx, sellerID, int32(opts.Limit), int32(opts.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("query seller orders: %w", err)
	}
	total, err := q.CountOrdersBySeller(ctx, sellerID)
	if err != nil {
		return nil, 0, fmt.Errorf("count seller orders: %w", err)
	}
	orders, err := r.allWithItems(ctx, q, rows)
	return orders, int(total), err
}

// UpdateStatus is a compare-and-set on the status column.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *models.Order, from models.Status, cancel *repositories.Cancellation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
			ID:        o.ID,
			From:      string(from),
			To:        string(o.Status),
			UpdatedAt: o.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: order %s is no longer %s", orderingdomain.ErrInvalidStatusTransition, o.ID, from)
		}

		if cancel == nil || r.pub == nil {
			return nil
		}
		items := make([]domainevents.CancelledItem, len(o.Items))
		for i, it := range o.Items {
			items[i] = domainevents.CancelledItem{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		if err := r.pub.PublishTx(ctx, tx, domainevents.TopicOrderCancelled, domainevents.OrderCancelled{
			Meta:    events.NewMeta(o.UpdatedAt),
			OrderID: o.ID,
			Items:   items,
			Restock: cancel.Restock,
			Reason:  cancel.Reason,
		}); err != nil {
			return fmt.Errorf("publish order cancelled: %w", err)
		}
		return nil
	})
}

func (r *OrderRepository) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	ids, err := db.New(r.db.DB()).ListStalePendingOrders(ctx, cutoff, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("query stale orders: %w", err)
	}
	return ids, nil
}

func (r *OrderRepository) SellerStats(ctx context.Context, sellerID uuid.UUID) (*models.SellerStats, error) {
	rows, err := db.New(r.db.DB()).SellerStatusCounts(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query seller stats: %w", err)
	}
	stats := &models.SellerStats{
		SellerID:     sellerID,
		Revenue:      decimal.Zero,
		StatusCounts: make(map[models.Status]int, len(rows)),
	}
	for _, row := range rows {
		status := models.Status(row.Status)
		stats.StatusCounts[status] = int(row.Count)
		stats.TotalOrders += int(row.Count)
		if slices.Contains(models.RevenueStatuses, status) {
			stats.Revenue = stats.Revenue.Add(row.Total)
		}
	}
	return stats, nil
}

func (r *OrderRepository) TopSelling(ctx context.Context, limit int) ([]models.ProductSales, error) {
	rows, err := db.New(r.db.DB()).TopSellingProducts(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("query top selling products: %w", err)
	}
	out := make([]models.ProductSales, len(rows))
	for i, row := range rows {
		out[i] = models.ProductSales{
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			ProductNameEn: row.ProductNameEn.String,
			QuantitySold:  int(row.QuantitySold),
			Revenue:       row.Revenue,
			OrderCount:    int(row.OrderCount),
		}
	}
	return out, nil
}

func (r *OrderRepository) PeriodStats(ctx context.Context, from, to time.Time) (*models.PeriodStats, error) {
	row, err := db.New(r.db.DB()).PeriodStats(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query period stats: %w", err)
	}
	return &models.PeriodStats{
		Orders:    int(row.Orders),
		Completed: int(row.Completed),
		Cancelled: int(row.Cancelled),
		Revenue:   row.Revenue,
	}, nil
}

func (r *OrderRepository) BuyerSummary(ctx context.Context, buyerID uuid.UUID) (*models.BuyerSummary, error) {
	count, spent, err := db.New(r.db.DB()).BuyerSummary(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query buyer summary: %w", err)
	}
	return &models.BuyerSummary{BuyerID: buyerID, OrderCount: int(count), TotalSpent: spent}, nil
}

func (r *OrderRepository) HasDelivered(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ok, err := db.New(r.db.DB()).HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("query delivered purchase: %w", err)
	}
	return ok, nil
}

func (r *OrderRepository) allWithItems(ctx context.Context, q *db.Queries, rows []db.OrderingOrder) ([]*models.Order, error) {
	out := make([]*models.Order, 0, len(rows))
	for _, row := range rows {
		o, err := r.withItems(ctx, q, row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) withItems(ctx context.Context, q *db.Queries, row db.OrderingOrder) (*models.Order, error) {
	o, err := rowToOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := q.ListOrderItems(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	o.Items = make([]models.Item, len(items))
	for i, it := range items {
		o.Items[i] = models.Item{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			ProductNameEn: it.ProductNameEn.String,
			Quantity:      int(it.Quantity),
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.Subtotal,
		}
	}
	return o, nil
}

func rowToOrder(row db.OrderingOrder) (*models.Order, error) {
	var address map[string]any
	if len(row.ShippingAddress) > 0 {
		if err := json.Unmarshal(row.ShippingAddress, &address); err != nil {
			return nil, fmt.Errorf("decode shipping address of order %s: %w", row.ID, err)
		}
	}
	return &models.Order{
		ID:              row.ID,
		OrderNumber:     row.OrderNumber,
		BuyerID:         row.BuyerID,
		SellerID:        row.SellerID,
		Total:           row.Total,
		Currency:        row.Currency,
		ShippingAddress: address,
		Status:          models.Status(row.Status),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
