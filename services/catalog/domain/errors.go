package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	ErrCategoryNotFound = errors.New("category not found")

	// ErrProductCategoryNotFound rejects products pointing at a missing category.
	ErrProductCategoryNotFound = errors.New("product category not found")

	// ErrProductNotFound also covers soft-deleted products.
	ErrProductNotFound = errors.New("product not found")

	ErrNotProductOwner       = errors.New("only the seller may modify this product")
	ErrDeleteForbidden       = errors.New("only the seller may delete this product")
	ErrStatusChangeForbidden = errors.New("only the seller may change this product's status")

	// ErrInsufficientStock is returned by DecreaseStock when fewer units remain than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidStatusTransition = errors.New("invalid product status transition")

	// ErrInvalidProduct indicates product fields violate domain constraints.
	ErrInvalidProduct = errors.New("invalid product")
)
