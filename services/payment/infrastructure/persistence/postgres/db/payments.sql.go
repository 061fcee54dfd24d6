package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type scanner interface {
	Scan(dest ...any) error
}

const paymentColumns = `id, order_id, buyer_id, amount, currency, method, status, provider,
	provider_transaction_id, provider_response, failure_reason, refund_reason,
	created_at, paid_at, refunded_at, updated_at`

const insertPayment = `-- name: InsertPayment :exec
INSERT INTO payment.payments (` + paymentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

func (q *Queries) InsertPayment(ctx context.Context, arg PaymentPayment) error {
	_, err := q.db.ExecContext(ctx, insertPayment,
		arg.ID,
		arg.OrderID,
		arg.BuyerID,
		arg.Amount,
		arg.Currency,
		arg.Method,
		arg.Status,
		arg.Provider,
		arg.ProviderTransactionID,
		arg.ProviderResponse,
		arg.FailureReason,
		arg.RefundReason,
		arg.CreatedAt,
		arg.PaidAt,
		arg.RefundedAt,
		arg.UpdatedAt,
	)
	return err
}

const getPaymentByID = `-- name: GetPaymentByID :one
SELECT ` + paymentColumns + ` FROM payment.payments WHERE id = $1
`

func (q *Queries) GetPaymentByID(ctx context.Context, id uuid.UUID) (PaymentPayment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, getPaymentByID, id))
}

const getPaymentByProviderTxID = `-- name: GetPaymentByProviderTxID :one
SELECT ` + paymentColumns + ` FROM payment.payments WHERE provider_transaction_id = $1
`

func (q *Queries) GetPaymentByProviderTxID(ctx context.Context, txID string) (PaymentPayment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, getPaymentByProviderTxID, txID))
}

const getActivePayment = `-- name: GetActivePayment :one
SELECT ` + paymentColumns + ` FROM payment.payments
WHERE order_id = $1 AND status IN ('PENDING', 'COMPLETED')
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetActivePayment(ctx context.Context, orderID uuid.UUID) (PaymentPayment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, getActivePayment, orderID))
}

const listPaymentsByOrder = `-- name: ListPaymentsByOrder :many
SELECT ` + paymentColumns + ` FROM payment.payments
WHERE order_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]PaymentPayment, error) {
	rows, err := q.db.QueryContext(ctx, listPaymentsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PaymentPayment
	for rows.Next() {
		i, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updatePayment = `-- name: UpdatePayment :execrows
UPDATE payment.payments
SET status = $3, provider_transaction_id = $4, provider_response = $5, failure_reason = $6,
    refund_reason = $7, paid_at = $8, refunded_at = $9, updated_at = $10
WHERE id = $1 AND status = $2
`

type UpdatePaymentParams struct {
	ID                    uuid.UUID
	From                  string
	Status                string
	ProviderTransactionID sql.NullString
	ProviderResponse      []byte
	FailureReason         sql.NullString
	RefundReason          sql.NullString
	PaidAt                sql.NullTime
	RefundedAt            sql.NullTime
	UpdatedAt             time.Time
}

func (q *Queries) UpdatePayment(ctx context.Context, arg UpdatePaymentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePayment,
		arg.ID,
		arg.From,
		arg.Status,
		arg.ProviderTransactionID,
		arg.ProviderResponse,
		arg.FailureReason,
		arg.RefundReason,
		arg.PaidAt,
		arg.RefundedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanPayment(row scanner) (PaymentPayment, error) {
	var i PaymentPayment
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.BuyerID,
		&i.Amount,
		&i.Currency,
		&i.Method,
		&i.Status,
		&i.Provider,
		&i.ProviderTransactionID,
		&i.ProviderResponse,
		&i.FailureReason,
		&i.RefundReason,
		&i.CreatedAt,
		&i.PaidAt,
		&i.RefundedAt,
		&i.UpdatedAt,
	)
	return i, err
}
