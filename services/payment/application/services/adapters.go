package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	paymentdomain "github.com/spicyjump/storefront/services/payment/domain"
	"github.com/spicyjump/storefront/services/payment/domain/ports"
)

// orderDirectory adapts the ordering service to ports.Orders.
type orderDirectory struct {
	orders *orderingsvcs.OrderService
}

func (d orderDirectory) Order(ctx context.Context, id uuid.UUID) (*ports.OrderSnapshot, error) {
	o, err := d.orders.Find(ctx, id)
	if errors.Is(err, orderingdomain.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: %s", paymentdomain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("ordering: %w", err)
	}
	return &ports.OrderSnapshot{
		ID:       o.ID,
		BuyerID:  o.BuyerID,
		SellerID: o.SellerID,
		Total:    o.Total,
		Currency: o.Currency,
		Status:   string(o.Status),
	}, nil
}
