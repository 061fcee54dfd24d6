package models

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the sales state of a product.
type Status string

const (
	StatusDraft        Status = "DRAFT"
	StatusPublished    Status = "PUBLISHED"
	StatusSoldOut      Status = "SOLDOUT"
	StatusDiscontinued Status = "DISCONTINUED"
)

// DefaultCurrency applies when a product is created without one.
const DefaultCurrency = "USD"

const (
	maxNameLength = 500
	maxImages     = 20
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidTransition is returned when the status table forbids a change.
var ErrInvalidTransition = errors.New("status transition not allowed")

// ErrStockExhausted is returned by Decrease when fewer units remain than requested.
var ErrStockExhausted = errors.New("not enough stock")

// transitions lists the statuses a seller may move a product to.
// DISCONTINUED is terminal.
var transitions = map[Status][]Status{
	StatusDraft:        {StatusPublished, StatusDiscontinued},
	StatusPublished:    {StatusSoldOut, StatusDiscontinued},
	StatusSoldOut:      {StatusPublished, StatusDiscontinued},
	StatusDiscontinued: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the status table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Product is the catalog aggregate.
type Product struct {
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
	Status        Status
	ViewCount     int64
	RatingAverage decimal.Decimal
	ReviewCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// NewProductParams are the seller-supplied fields of a new product.
type NewProductParams struct {
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
}

// NewProduct builds a DRAFT product. Currency defaults to USD.
func NewProduct(p NewProductParams, now time.Time) (*Product, error) {
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	prod := &Product{
		ID:            uuid.New(),
		SellerID:      p.SellerID,
		CategoryID:    p.CategoryID,
		Name:          strings.TrimSpace(p.Name),
		NameEn:        strings.TrimSpace(p.NameEn),
		Description:   p.Description,
		DescriptionEn: p.DescriptionEn,
		Price:         p.Price,
		Currency:      currency,
		StockQuantity: p.StockQuantity,
		Images:        p.Images,
		Status:        StatusDraft,
		RatingAverage: decimal.Zero,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if prod.Images == nil {
		prod.Images = []string{}
	}
	if err := prod.check(); err != nil {
		return nil, err
	}
	return prod, nil
}

// check enforces the structural field constraints.
func (p *Product) check() error {
	switch {
	case p.Name == "":
		return errors.New("name is required")
	case utf8.RuneCountInString(p.Name) > maxNameLength:
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	case utf8.RuneCountInString(p.NameEn) > maxNameLength:
		return fmt.Errorf("name_en must not exceed %d characters", maxNameLength)
	case strings.TrimSpace(p.Description) == "":
		return errors.New("description is required")
	case !p.Price.IsPositive():
		return errors.New("price must be greater than 0")
	case !p.Price.Equal(p.Price.Round(2)):
		return errors.New("price supports at most 2 decimal places")
	case !currencyPattern.MatchString(p.Currency):
		return errors.New("currency must be a 3-letter upper-case code")
	case p.StockQuantity < 0:
		return errors.New("stock quantity must not be negative")
	case len(p.Images) > maxImages:
		return fmt.Errorf("at most %d images are allowed", maxImages)
	}
	return nil
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	CategoryID    *uuid.UUID
	Name          *string
	NameEn        *string
	Description   *string
	DescriptionEn *string
	Price         *decimal.Decimal
	Currency      *string
	StockQuantity *int
	Images        []string
}

// Apply merges upd into p and re-validates. On error p is unchanged.
// A stock change moves PUBLISHED to SOLDOUT at zero and back when restocked.
func (p *Product) Apply(upd ProductUpdate, now time.Time) error {
	next := *p
	if upd.CategoryID != nil {
		next.CategoryID = *upd.CategoryID
	}
	if upd.Name != nil {
		next.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.NameEn != nil {
		next.NameEn = strings.TrimSpace(*upd.NameEn)
	}
	if upd.Description != nil {
		next.Description = *upd.Description
	}
	if upd.DescriptionEn != nil {
		next.DescriptionEn = *upd.DescriptionEn
	}
	if upd.Price != nil {
		next.Price = *upd.Price
	}
	if upd.Currency != nil {
		next.Currency = strings.ToUpper(strings.TrimSpace(*upd.Currency))
	}
	if upd.StockQuantity != nil {
		next.StockQuantity = *upd.StockQuantity
	}
	if upd.Images != nil {
		next.Images = upd.Images
	}
	if err := next.check(); err != nil {
		return err
	}
	next.syncStockStatus()
	next.UpdatedAt = now.UTC()
	*p = next
	return nil
}

// ChangeStatus moves p to target following the status table.
func (p *Product) ChangeStatus(target Status, now time.Time) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !p.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, target)
	}
	if target == StatusPublished && p.StockQuantity == 0 && p.Status == StatusSoldOut {
		return fmt.Errorf("%w: cannot publish a sold out product without stock", ErrInvalidTransition)
	}
	p.Status = target
	p.UpdatedAt = now.UTC()
	return nil
}

// Decrease removes qty units. Reaching zero marks a PUBLISHED product SOLDOUT.
func (p *Product) Decrease(qty int, now time.Time) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	if p.StockQuantity < qty {
		return fmt.Errorf("%w: requested %d, available %d", ErrStockExhausted, qty, p.StockQuantity)
	}
	p.StockQuantity -= qty
	p.syncStockStatus()
	p.UpdatedAt = now.UTC()
	return nil
}

// Restore adds qty units back. A SOLDOUT product becomes PUBLISHED again.
func (p *Product) Restore(qty int, now time.Time) {
	if qty <= 0 {
		return
	}
	p.StockQuantity += qty
	p.syncStockStatus()
	p.UpdatedAt = now.UTC()
}

func (p *Product) syncStockStatus() {
	switch {
	case p.Status == StatusPublished && p.StockQuantity == 0:
		p.Status = StatusSoldOut
	case p.Status == StatusSoldOut && p.StockQuantity > 0:
		p.Status = StatusPublished
	}
}

// SoftDelete hides the product from every read and discontinues it.
func (p *Product) SoftDelete(now time.Time) {
	t := now.UTC()
	p.DeletedAt = &t
	p.Status = StatusDiscontinued
	p.UpdatedAt = t
}

// IsDeleted reports whether the product was soft deleted.
func (p *Product) IsDeleted() bool { return p.DeletedAt != nil }

// IsPublished reports whether buyers may order the product.
func (p *Product) IsPublished() bool { return p.Status == StatusPublished }

// OwnedBy reports whether sellerID listed the product.
func (p *Product) OwnedBy(sellerID uuid.UUID) bool { return p.SellerID == sellerID }
