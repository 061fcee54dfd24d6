package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/payment/domain/models"
)

// PaymentRepository is the persistence interface for the Payment aggregate.
type PaymentRepository interface {
	// Create returns domain.ErrPaymentInProgress when the order already has
	// an active payment.
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByProviderTxID(ctx context.Context, txID string) (*models.Payment, error)

	// Active returns the order's PENDING or COMPLETED payment, or
	// domain.ErrPaymentNotFound.
	Active(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)

	// ListByOrder returns every payment for the order, newest first.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error)

	// Save writes p only if the stored status is still from; a lost race
	// returns domain.ErrAlreadyProcessed. Entering COMPLETED or REFUNDED
	// publishes payment.completed or payment.refunded in the same transaction.
	Save(ctx context.Context, p *models.Payment, from models.Status) error
}
