package domain

import "errors"

// Sentinel errors for the review domain. Use errors.Is() to check these.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")

	// ErrAlreadyReviewed: a user keeps at most one live review per product.
	ErrAlreadyReviewed = errors.New("product has already been reviewed")

	// ErrReviewNotFound also covers DELETED reviews.
	ErrReviewNotFound = errors.New("review not found")

	ErrNotReviewAuthor = errors.New("only the author may edit this review")
	ErrDeleteForbidden = errors.New("only the author or an admin may delete this review")

	ErrInvalidReview = errors.New("invalid review")
)
