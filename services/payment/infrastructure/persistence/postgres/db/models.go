package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentPayment struct {
	ID                    uuid.UUID
	OrderID               uuid.UUID
	BuyerID               uuid.UUID
	Amount                decimal.Decimal
	Currency              string
	Method                string
	Status                string
	Provider              string
	ProviderTransactionID sql.NullString
	ProviderResponse      []byte
	FailureReason         sql.NullString
	RefundReason          sql.NullString
	CreatedAt             time.Time
	PaidAt                sql.NullTime
	RefundedAt            sql.NullTime
	UpdatedAt             time.Time
}
