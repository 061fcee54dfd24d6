package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodCard         Method = "CARD"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodPayPal       Method = "PAYPAL"
	MethodStripe       Method = "STRIPE"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

type Provider string

const (
	ProviderToss    Provider = "TOSS"
	ProviderNicePay Provider = "NICEPAY"
	ProviderStripe  Provider = "STRIPE"
)

var (
	ErrNotPending   = errors.New("payment is not pending")
	ErrNotCompleted = errors.New("payment is not completed")
	ErrBadMethod    = errors.New("unknown payment method")
	ErrBadProvider  = errors.New("unknown payment provider")
)

// ParseMethod accepts any letter case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodCard, MethodBankTransfer, MethodPayPal, MethodStripe:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadMethod, s)
}

// ParseProvider accepts any letter case.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case ProviderToss, ProviderNicePay, ProviderStripe:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadProvider, s)
}

// ProviderStatus maps a status string reported by a gateway or webhook onto a
// payment status. Unknown strings report false and are ignored by callers.
func ProviderStatus(s string) (Status, bool) {
	switch s {
	case "DONE", "succeeded":
		return StatusCompleted, true
	case "CANCELED", "PARTIAL_CANCELED", "refunded":
		return StatusRefunded, true
	case "ABORTED", "EXPIRED", "failed":
		return StatusFailed, true
	}
	return "", false
}

// Payment is one attempt to pay for an order through a provider.
type Payment struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	BuyerID          uuid.UUID
	Amount           decimal.Decimal
	Currency         string
	Method           Method
	Status           Status
	Provider         Provider
	ProviderTxID     string
	ProviderResponse []byte
	FailureReason    string
	RefundReason     string
	CreatedAt        time.Time
	PaidAt           *time.Time
	RefundedAt       *time.Time
	UpdatedAt        time.Time
}

func NewPayment(orderID, buyerID uuid.UUID, amount decimal.Decimal, currency string, method Method, provider Provider, now time.Time) *Payment {
	return &Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		BuyerID:   buyerID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    StatusPending,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Active payments block a new payment for the same order.
func (p *Payment) Active() bool {
	return p.Status == StatusPending || p.Status == StatusCompleted
}

func (p *Payment) Complete(txID string, response []byte, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, p.Status)
	}
	if txID != "" {
		p.ProviderTxID = txID
	}
	if response != nil {
		p.ProviderResponse = response
	}
	p.Status = StatusCompleted
	p.PaidAt = &now
	p.UpdatedAt = now
	return nil
}

func (p *Payment) Fail(reason string, response []byte, now time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: status is %s", ErrNotPending, p.Status)
	}
	if response != nil {
		p.ProviderResponse = response
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.UpdatedAt = now
	return nil
}

// Refund moves a COMPLETED payment to REFUNDED. A pending payment the
// provider cancelled before settlement becomes CANCELLED instead.
func (p *Payment) Refund(reason string, now time.Time) error {
	switch p.Status {
	case StatusCompleted:
		p.Status = StatusRefunded
		p.RefundedAt = &now
	case StatusPending:
		p.Status = StatusCancelled
	default:
		return fmt.Errorf("%w: status is %s", ErrNotCompleted, p.Status)
	}
	p.RefundReason = reason
	p.UpdatedAt = now
	return nil
}

// Apply moves the payment to a provider-reported status.
func (p *Payment) Apply(target Status, now time.Time) error {
	switch target {
	case StatusCompleted:
		return p.Complete("", nil, now)
	case StatusFailed:
		return p.Fail("reported failed by provider", nil, now)
	case StatusRefunded:
		return p.Refund("reported cancelled by provider", now)
	}
	return fmt.Errorf("cannot apply status %s", target)
}
