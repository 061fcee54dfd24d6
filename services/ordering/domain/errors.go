package domain

import "errors"

// Sentinel errors for the ordering domain. Use errors.Is() to check these.
var (
	ErrBuyerNotFound  = errors.New("buyer not found")
	ErrSellerNotFound = errors.New("seller not found")

	// ErrProductNotFound is returned when an order line names an unknown product.
	ErrProductNotFound = errors.New("product not found")

	ErrInsufficientStock = errors.New("insufficient stock")

	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderAccessDenied: only the buyer and the seller may read an order.
	ErrOrderAccessDenied = errors.New("not allowed to view this order")

	ErrNotOrderSeller = errors.New("only the seller may change the order status")
	ErrNotOrderBuyer  = errors.New("only the buyer may cancel the order")

	// ErrNotCancellable: orders can be cancelled only while PENDING or PAID.
	ErrNotCancellable = errors.New("order can no longer be cancelled")

	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrInvalidOrder covers malformed lines, products of another seller or
	// currency, and unpublished products.
	ErrInvalidOrder = errors.New("invalid order")
)
