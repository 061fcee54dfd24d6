package db

import (
	"time"

	"github.com/google/uuid"
)

type ReviewReview struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	UserID           uuid.UUID
	Rating           int32
	Title            string
	Content          string
	Images           []byte
	VerifiedPurchase bool
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
