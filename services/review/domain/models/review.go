package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the visibility of a review.
type Status string

const (
	StatusPublished Status = "PUBLISHED"
	StatusHidden    Status = "HIDDEN"
	StatusDeleted   Status = "DELETED"
)

const (
	MinRating = 1
	MaxRating = 5

	maxTitleLength = 200
	maxImages      = 10
)

// Review is a buyer's rating of a product.
type Review struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	UserID           uuid.UUID
	Rating           int
	Title            string
	Content          string
	Images           []string
	VerifiedPurchase bool
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewReviewParams struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Title     string
	Content   string
	Images    []string
}

// NewReview builds a PUBLISHED review.
func NewReview(p NewReviewParams, verified bool, now time.Time) (*Review, error) {
	r := &Review{
		ID:               uuid.New(),
		ProductID:        p.ProductID,
		UserID:           p.UserID,
		Rating:           p.Rating,
		Title:            strings.TrimSpace(p.Title),
		Content:          strings.TrimSpace(p.Content),
		Images:           p.Images,
		VerifiedPurchase: verified,
		Status:           StatusPublished,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) check() error {
	switch {
	case r.Rating < MinRating || r.Rating > MaxRating:
		return fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	case utf8.RuneCountInString(r.Title) > maxTitleLength:
		return fmt.Errorf("title must not exceed %d characters", maxTitleLength)
	case r.Content == "":
		return errors.New("content is required")
	case len(r.Images) > maxImages:
		return fmt.Errorf("at most %d images are allowed", maxImages)
	}
	return nil
}

// ReviewUpdate is a partial update; nil fields are left unchanged.
type ReviewUpdate struct {
	Rating  *int
	Title   *string
	Content *string
	Images  []string
}

// Apply merges upd into r and re-validates. On error r is unchanged.
func (r *Review) Apply(upd ReviewUpdate, now time.Time) error {
	next := *r
	if upd.Rating != nil {
		next.Rating = *upd.Rating
	}
	if upd.Title != nil {
		next.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Content != nil {
		next.Content = strings.TrimSpace(*upd.Content)
	}
	if upd.Images != nil {
		next.Images = upd.Images
	}
	if err := next.check(); err != nil {
		return err
	}
	next.UpdatedAt = now.UTC()
	*r = next
	return nil
}

// Delete soft-deletes the review.
func (r *Review) Delete(now time.Time) {
	r.Status = StatusDeleted
	r.UpdatedAt = now.UTC()
}

// RatingSummary aggregates the PUBLISHED reviews of a product.
type RatingSummary struct {
	ProductID uuid.UUID
	Average   decimal.Decimal
	Count     int
	// Histogram holds the number of reviews per rating, 1 through 5.
	Histogram map[int]int
}

// NewRatingSummary builds a summary from per-rating counts. The average is
// rounded to two places.
func NewRatingSummary(productID uuid.UUID, counts map[int]int) *RatingSummary {
	s := &RatingSummary{ProductID: productID, Average: decimal.Zero, Histogram: make(map[int]int, MaxRating)}
	sum := 0
	for rating := MinRating; rating <= MaxRating; rating++ {
		n := counts[rating]
		s.Histogram[rating] = n
		s.Count += n
		sum += rating * n
	}
	if s.Count > 0 {
		s.Average = decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(s.Count)), 2)
	}
	return s
}
