package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderingOrder struct {
	ID              uuid.UUID
	OrderNumber     string
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Total           decimal.Decimal
	Currency        string
	ShippingAddress []byte
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderingOrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	ProductNameEn sql.NullString
	Quantity      int32
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}
