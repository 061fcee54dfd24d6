package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogCategory struct {
	ID        uuid.UUID
	ParentID  uuid.NullUUID
	Name      string
	NameEn    sql.NullString
	SortOrder int32
	CreatedAt time.Time
}

type CatalogProduct struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	CategoryID    uuid.UUID
	Name          string
	NameEn        sql.NullString
	Description   string
	DescriptionEn sql.NullString
	Price         decimal.Decimal
	Currency      string
	StockQuantity int32
	Images        []byte
	Status        string
	ViewCount     int64
	RatingAverage decimal.Decimal
	ReviewCount   int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     sql.NullTime
}
