package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/telemetry"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	"github.com/spicyjump/storefront/services/ordering/domain/models"
	"github.com/spicyjump/storefront/services/ordering/domain/ports"
	"github.com/spicyjump/storefront/services/ordering/domain/repositories"
)

const (
	staleBatchSize     = 100
	defaultTopSelling  = 10
	maxTopSellingLimit = 100
)

// LineRequest is one requested order line.
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderParams is the input to OrderService.Create.
type CreateOrderParams struct {
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Items           []LineRequest
	ShippingAddress map[string]any
}

// OrderService places orders and drives them through their lifecycle.
type OrderService struct {
	orders   repositories.OrderRepository
	users    ports.Users
	products ports.Products
	metrics  *telemetry.Metrics
	log      logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewOrderService(
	orders repositories.OrderRepository,
	users ports.Users,
	products ports.Products,
	paymentTimeout time.Duration,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		products: products,
		metrics:  metrics,
		log:      log,
		timeout:  paymentTimeout,
		now:      time.Now,
	}
}

// PaymentTimeout is how long a PENDING order waits for payment.
func (s *OrderService) PaymentTimeout() time.Duration {
	return s.timeout
}

// Create places a PENDING order. Stock is taken line by line through the
// catalog; if any later step fails every line already taken is given back.
func (s *OrderService) Create(ctx context.Context, p CreateOrderParams) (*models.Order, error) {
	if err := s.requireUser(ctx, p.BuyerID, orderingdomain.ErrBuyerNotFound); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, p.SellerID, orderingdomain.ErrSellerNotFound); err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", orderingdomain.ErrInvalidOrder)
	}

	lines := make([]models.Line, 0, len(p.Items))
	for _, req := range p.Items {
		line, err := s.price(ctx, p.SellerID, req)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	order, err := models.NewOrder(p.BuyerID, p.SellerID, p.ShippingAddress, lines, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", orderingdomain.ErrInvalidOrder, err)
	}

	taken := make([]models.Item, 0, len(order.Items))
	for _, it := range order.Items {
		if err := s.products.DecreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.giveBack(ctx, order.ID, taken)
			return nil, err
		}
		taken = append(taken, it)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.giveBack(ctx, order.ID, taken)
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.metrics.OrderCreated(ctx, order.Currency)
	s.log.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"total", order.Total.String(),
		"currency", order.Currency,
	)
	return order, nil
}

// price turns a requested line into a priced line, checking the product.
func (s *OrderService) price(ctx context.Context, sellerID uuid.UUID, req LineRequest) (models.Line, error) {
	if req.Quantity < 1 {
		return models.Line{}, fmt.Errorf("%w: quantity for product %s must be at least 1", orderingdomain.ErrInvalidOrder, req.ProductID)
	}
	prod, err := s.products.Product(ctx, req.ProductID)
	if err != nil {
		return models.Line{}, err
	}
	switch {
	case prod.SellerID != sellerID:
		return models.Line{}, fmt.Errorf("%w: product %s is sold by another seller", orderingdomain.ErrInvalidOrder, prod.ID)
	case !prod.Published:
		return models.Line{}, fmt.Errorf("%w: product %s is not on sale", orderingdomain.ErrInvalidOrder, prod.ID)
	case prod.Stock < req.Quantity:
		return models.Line{}, fmt.Errorf("%w: %s has %d left, %d requested",
			orderingdomain.ErrInsufficientStock, prod.Name, prod.Stock, req.Quantity)
	}
	return models.Line{
		ProductID:     prod.ID,
		ProductName:   prod.Name,
		ProductNameEn: prod.NameEn,
		Quantity:      req.Quantity,
		UnitPrice:     prod.Price,
		Currency:      prod.Currency,
	}, nil
}

func (s *OrderService) giveBack(ctx context.Context, orderID uuid.UUID, items []models.Item) {
	for _, it := range items {
		if err := s.products.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.ErrorContext(ctx, "stock compensation failed",
				"order_id", orderID,
				"product_id", it.ProductID,
				"quantity", it.Quantity,
				"error", err,
			)
		}
	}
}

func (s *OrderService) requireUser(ctx context.Context, id uuid.UUID, missing error) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return missing
	}
	return nil
}

// Get returns an order visible to its buyer or seller.
func (s *OrderService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.InvolvesUser(userID) {
		return nil, orderingdomain.ErrOrderAccessDenied
	}
	return o, nil
}

// Find returns an order without an access check. Used by other contexts.
func (s *OrderService) Find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) My(ctx context.Context, buyerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	return s.orders.ListByBuyer(ctx, buyerID, opts)
}

func (s *OrderService) Sales(ctx context.Context, sellerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	return s.orders.ListBySeller(ctx, sellerID, opts)
}

func (s *OrderService) SellerStats(ctx context.Context, sellerID uuid.UUID) (*models.SellerStats, error) {
	return s.orders.SellerStats(ctx, sellerID)
}

// UpdateStatus is the seller's status change. Cancelling restocks.
func (s *OrderService) UpdateStatus(ctx context.Context, sellerID, id uuid.UUID, target models.Status) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, orderingdomain.ErrNotOrderSeller
	}

	target = models.Status(strings.ToUpper(string(target)))
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", orderingdomain.ErrInvalidStatusTransition, target)
	}
	from := o.Status
	if err := o.TransitionTo(target, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", orderingdomain.ErrInvalidStatusTransition, err)
	}

	var cancel *repositories.Cancellation
	if target == models.StatusCancelled {
		cancel = &repositories.Cancellation{Reason: models.ReasonSeller, Restock: true}
	}
	if err := s.orders.UpdateStatus(ctx, o, from, cancel); err != nil {
		return nil, err
	}
	if cancel != nil {
		s.metrics.OrderCancelled(ctx, cancel.Reason)
	}
	s.log.InfoContext(ctx, "order status changed", "order_id", id, "from", from, "to", target)
	return o, nil
}

// Cancel is the buyer's cancellation, allowed while PENDING or PAID.
func (s *OrderService) Cancel(ctx context.Context, buyerID, id uuid.UUID) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, orderingdomain.ErrNotOrderBuyer
	}
	from := o.Status
	if err := o.Cancel(s.now()); err != nil {
		return nil, orderingdomain.ErrNotCancellable
	}
	if err := s.orders.UpdateStatus(ctx, o, from, &repositories.Cancellation{Reason: models.ReasonBuyer, Restock: true}); err != nil {
		return nil, err
	}
	s.metrics.OrderCancelled(ctx, models.ReasonBuyer)
	s.log.InfoContext(ctx, "order cancelled by buyer", "order_id", id, "from", from)
	return o, nil
}

// MarkPaid records a completed payment. Orders already past PENDING are left
// alone so redelivered events are harmless.
func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == models.StatusCancelled {
		s.log.WarnContext(ctx, "payment completed for a cancelled order", "order_id", id)
		return nil
	}
	if o.Status != models.StatusPending {
		return nil
	}

	if err := o.TransitionTo(models.StatusPaid, s.now()); err != nil {
		return err
	}
	if err := s.orders.UpdateStatus(ctx, o, models.StatusPending, nil); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "order paid", "order_id", id)
	return nil
}

// MarkRefunded cancels an order whose payment was refunded. Stock is returned
// unless the goods had already shipped.
func (s *OrderService) MarkRefunded(ctx context.Context, id uuid.UUID) error {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == models.StatusCancelled {
		return nil
	}
	from := o.Status
	cancel := &repositories.Cancellation{Reason: models.ReasonRefunded, Restock: !from.Shipped()}
	o.Status = models.StatusCancelled
	o.UpdatedAt = s.now()
	if err := s.orders.UpdateStatus(ctx, o, from, cancel); err != nil {
		return err
	}
	s.metrics.OrderCancelled(ctx, cancel.Reason)
	s.log.InfoContext(ctx, "order cancelled after refund", "order_id", id, "from", from, "restock", cancel.Restock)
	return nil
}

// ExpireIfUnpaid cancels the order if it is still PENDING after the payment
// timeout. It reports whether the order was cancelled.
func (s *OrderService) ExpireIfUnpaid(ctx context.Context, id uuid.UUID) (bool, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !o.Expired(s.now(), s.timeout) {
		return false, nil
	}
	if err := o.Cancel(s.now()); err != nil {
		return false, nil
	}
	err = s.orders.UpdateStatus(ctx, o, models.StatusPending, &repositories.Cancellation{Reason: models.ReasonExpired, Restock: true})
	if errors.Is(err, orderingdomain.ErrInvalidStatusTransition) {
		// Paid in the meantime.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.metrics.OrderCancelled(ctx, models.ReasonExpired)
	s.log.InfoContext(ctx, "unpaid order expired", "order_id", id)
	return true, nil
}

// ExpireStale sweeps PENDING orders older than the payment timeout and
// returns how many were cancelled. One failing order does not stop the sweep.
func (s *OrderService) ExpireStale(ctx context.Context) (int, error) {
	ids, err := s.orders.StalePending(ctx, s.now().Add(-s.timeout), staleBatchSize)
	if err != nil {
		return 0, err
	}
	var (
		expired int
		errs    []error
	)
	for _, id := range ids {
		ok, err := s.ExpireIfUnpaid(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errors.Join(errs...)
}

// TopSellingProducts ranks products by units sold in paid orders. limit is
// clamped to [1, 100]; zero means 10.
func (s *OrderService) TopSellingProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	switch {
	case limit <= 0:
		limit = defaultTopSelling
	case limit > maxTopSellingLimit:
		limit = maxTopSellingLimit
	}
	return s.orders.TopSelling(ctx, limit)
}

func (s *OrderService) BuyerSummary(ctx context.Context, buyerID uuid.UUID) (*models.BuyerSummary, error) {
	return s.orders.BuyerSummary(ctx, buyerID)
}

// PeriodStats reports order volume and revenue for orders created in [from, to).
func (s *OrderService) PeriodStats(ctx context.Context, from, to time.Time) (*models.PeriodStats, error) {
	return s.orders.PeriodStats(ctx, from, to)
}

// HasDeliveredPurchase reports whether userID received productID.
func (s *OrderService) HasDeliveredPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.orders.HasDelivered(ctx, userID, productID)
}
