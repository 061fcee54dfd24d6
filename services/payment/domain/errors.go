package domain

import "errors"

// Sentinel errors for the payment domain. Use errors.Is() to check these.
var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrAmountMismatch: the paid amount must equal the order total.
	ErrAmountMismatch = errors.New("payment amount does not match the order total")

	// ErrPaymentInProgress: an order has at most one PENDING or COMPLETED payment.
	ErrPaymentInProgress = errors.New("a payment for this order is already pending or completed")

	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAlreadyProcessed: only PENDING payments can be confirmed.
	ErrAlreadyProcessed = errors.New("payment has already been processed")

	// ErrGatewayRejected wraps a confirmation failure reported by the provider.
	ErrGatewayRejected = errors.New("payment gateway rejected the payment")

	ErrNotRefundable = errors.New("only completed payments can be refunded")

	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	// ErrRefundFailed wraps a refund failure reported by the provider.
	ErrRefundFailed = errors.New("payment gateway refund failed")

	ErrPaymentAccessDenied = errors.New("not allowed to access this payment")

	ErrInvalidPayment = errors.New("invalid payment")
)
