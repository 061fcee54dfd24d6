package events

import (
	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/events"
)

const TopicReviewChanged = "review.changed"

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ReviewChanged is published whenever a review is written. The worker
// recomputes the product's rating from it.
type ReviewChanged struct {
	events.Meta
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	Change    string    `json:"change"`
}
