package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...any) error
}

const orderColumns = `id, order_number, buyer_id, seller_id, total, currency, shipping_address,
	status, created_at, updated_at`

// revenueStatuses mirrors models.RevenueStatuses.
const revenueStatuses = `('PAID', 'CONFIRMED', 'SHIPPING', 'DELIVERED')`

const insertOrder = `-- name: InsertOrder :exec
INSERT INTO ordering.orders (` + orderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (q *Queries) InsertOrder(ctx context.Context, arg OrderingOrder) error {
	_, err := q.db.ExecContext(ctx, insertOrder,
		arg.ID,
		arg.OrderNumber,
		arg.BuyerID,
		arg.SellerID,
		arg.Total,
		arg.Currency,
		arg.ShippingAddress,
		arg.Status,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const insertOrderItem = `-- name: InsertOrderItem :exec
INSERT INTO ordering.order_items (id, order_id, product_id, product_name, product_name_en,
	quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (q *Queries) InsertOrderItem(ctx context.Context, arg OrderingOrderItem) error {
	_, err := q.db.ExecContext(ctx, insertOrderItem,
		arg.ID,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.ProductNameEn,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	return err
}

const getOrderByID = `-- name: GetOrderByID :one
SELECT ` + orderColumns + ` FROM ordering.orders WHERE id = $1
`

func (q *Queries) GetOrderByID(ctx context.Context, id uuid.UUID) (OrderingOrder, error) {
	return scanOrder(q.db.QueryRowContext(ctx, getOrderByID, id))
}

const listOrderItems = `-- name: ListOrderItems :many
SELECT id, order_id, product_id, product_name, product_name_en, quantity, unit_price, subtotal
FROM ordering.order_items
WHERE order_id = $1
ORDER BY product_name
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderingOrderItem, error) {
	rows, err := q.db.QueryContext(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderingOrderItem
	for rows.Next() {
		var i OrderingOrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.ProductName,
			&i.ProductNameEn,
			&i.Quantity,
			&i.UnitPrice,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listOrdersByBuyer = `-- name: ListOrdersByBuyer :many
SELECT ` + orderColumns + ` FROM ordering.orders
WHERE buyer_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

func (q *Queries) ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int32) ([]OrderingOrder, error) {
	return q.queryOrders(ctx, listOrdersByBuyer, buyerID, limit, offset)
}

const countOrdersByBuyer = `-- name: CountOrdersByBuyer :one
SELECT count(*) FROM ordering.orders WHERE buyer_id = $1
`

func (q *Queries) CountOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOrdersByBuyer, buyerID).Scan(&count)
	return count, err
}

const listOrdersBySeller = `-- name: ListOrdersBySeller :many
SELECT ` + orderColumns + ` FROM ordering.orders
WHERE seller_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

func (q *Queries) ListOrdersBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int32) ([]OrderingOrder, error) {
	return q.queryOrders(ctx, listOrdersBySeller, sellerID, limit, offset)
}

const countOrdersBySeller = `-- name: CountOrdersBySeller :one
SELECT count(*) FROM ordering.orders WHERE seller_id = $1
`

func (q *Queries) CountOrdersBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countOrdersBySeller, sellerID).Scan(&count)
	return count, err
}

const updateOrderStatus = `-- name: UpdateOrderStatus :execrows
UPDATE ordering.orders
SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2
`

type UpdateOrderStatusParams struct {
	ID        uuid.UUID
	From      string
	To        string
	UpdatedAt time.Time
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateOrderStatus, arg.ID, arg.From, arg.To, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listStalePendingOrders = `-- name: ListStalePendingOrders :many
SELECT id FROM ordering.orders
WHERE status = 'PENDING' AND created_at <= $1
ORDER BY created_at
LIMIT $2
`

func (q *Queries) ListStalePendingOrders(ctx context.Context, cutoff time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listStalePendingOrders, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const sellerStatusCounts = `-- name: SellerStatusCounts :many
SELECT status, count(*), COALESCE(sum(total), 0)
FROM ordering.orders
WHERE seller_id = $1
GROUP BY status
`

type SellerStatusCountsRow struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

func (q *Queries) SellerStatusCounts(ctx context.Context, sellerID uuid.UUID) ([]SellerStatusCountsRow, error) {
	rows, err := q.db.QueryContext(ctx, sellerStatusCounts, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SellerStatusCountsRow
	for rows.Next() {
		var i SellerStatusCountsRow
		if err := rows.Scan(&i.Status, &i.Count, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const topSellingProducts = `-- name: TopSellingProducts :many
SELECT i.product_id, max(i.product_name), max(i.product_name_en),
       sum(i.quantity), sum(i.subtotal), count(DISTINCT i.order_id)
FROM ordering.order_items i
JOIN ordering.orders o ON o.id = i.order_id
WHERE o.status IN ` + revenueStatuses + `
GROUP BY i.product_id
ORDER BY sum(i.quantity) DESC, sum(i.subtotal) DESC
LIMIT $1
`

type TopSellingProductsRow struct {
	ProductID     uuid.UUID
	ProductName   string
	ProductNameEn sql.NullString
	QuantitySold  int64
	Revenue       decimal.Decimal
	OrderCount    int64
}

func (q *Queries) TopSellingProducts(ctx context.Context, limit int32) ([]TopSellingProductsRow, error) {
	rows, err := q.db.QueryContext(ctx, topSellingProducts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopSellingProductsRow
	for rows.Next() {
		var i TopSellingProductsRow
		if err := rows.Scan(
			&i.ProductID,
			&i.ProductName,
			&i.ProductNameEn,
			&i.QuantitySold,
			&i.Revenue,
			&i.OrderCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const periodStats = `-- name: PeriodStats :one
SELECT count(*),
       count(*) FILTER (WHERE status = 'DELIVERED'),
       count(*) FILTER (WHERE status = 'CANCELLED'),
       COALESCE(sum(total) FILTER (WHERE status IN ` + revenueStatuses + `), 0)
FROM ordering.orders
WHERE created_at >= $1 AND created_at < $2
`

type PeriodStatsRow struct {
	Orders    int64
	Completed int64
	Cancelled int64
	Revenue   decimal.Decimal
}

func (q *Queries) PeriodStats(ctx context.Context, from, to time.Time) (PeriodStatsRow, error) {
	var i PeriodStatsRow
	err := q.db.QueryRowContext(ctx, periodStats, from, to).Scan(
		&i.Orders,
		&i.Completed,
		&i.Cancelled,
		&i.Revenue,
	)
	return i, err
}

const buyerSummary = `-- name: BuyerSummary :one
SELECT count(*) FILTER (WHERE status <> 'CANCELLED'),
       COALESCE(sum(total) FILTER (WHERE status IN ` + revenueStatuses + `), 0)
FROM ordering.orders
WHERE buyer_id = $1
`

func (q *Queries) BuyerSummary(ctx context.Context, buyerID uuid.UUID) (int64, decimal.Decimal, error) {
	var (
		count int64
		spent decimal.Decimal
	)
	err := q.db.QueryRowContext(ctx, buyerSummary, buyerID).Scan(&count, &spent)
	return count, spent, err
}

const hasDeliveredPurchase = `-- name: HasDeliveredPurchase :one
SELECT EXISTS (
  SELECT 1 FROM ordering.order_items i
  JOIN ordering.orders o ON o.id = i.order_id
  WHERE o.buyer_id = $1 AND i.product_id = $2 AND o.status = 'DELIVERED'
)
`

func (q *Queries) HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID) (bool, error) {
	var ok bool
	err := q.db.QueryRowContext(ctx, hasDeliveredPurchase, buyerID, productID).Scan(&ok)
	return ok, err
}

func (q *Queries) queryOrders(ctx context.Context, query string, args ...any) ([]OrderingOrder, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderingOrder
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func scanOrder(row scanner) (OrderingOrder, error) {
	var i OrderingOrder
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.BuyerID,
		&i.SellerID,
		&i.Total,
		&i.Currency,
		&i.ShippingAddress,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
