package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	"github.com/spicyjump/storefront/services/ordering/domain/models"
	"github.com/spicyjump/storefront/services/ordering/domain/repositories"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1" example:"2"`
} // @name OrderItemRequest

// CreateOrderRequest is the request body for POST /orders.
type CreateOrderRequest struct {
	SellerID        uuid.UUID          `json:"seller_id" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress map[string]any     `json:"shipping_address" validate:"required"`
} // @name CreateOrderRequest

type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductNameEn string          `json:"product_name_en,omitempty"`
	DisplayName   string          `json:"display_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" swaggertype:"string" example:"4.50"`
	Subtotal      decimal.Decimal `json:"subtotal" swaggertype:"string" example:"9.00"`
} // @name OrderItemResponse

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number" example:"ORD-20250601-7K2M9QXA"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	Total           decimal.Decimal     `json:"total" swaggertype:"string" example:"31.00"`
	Currency        string              `json:"currency" example:"USD"`
	ShippingAddress map[string]any      `json:"shipping_address"`
	Status          string              `json:"status" example:"PENDING"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
} // @name OrderResponse

// OrderPage is the paginated order list envelope.
type OrderPage = httpx.Page[OrderResponse]

type SellerStatsResponse struct {
	SellerID     uuid.UUID       `json:"seller_id"`
	TotalOrders  int             `json:"total_orders"`
	Revenue      decimal.Decimal `json:"revenue" swaggertype:"string" example:"1250.00"`
	StatusCounts map[string]int  `json:"status_counts"`
} // @name SellerStatsResponse

// OrderHandler serves the /orders endpoints.
type OrderHandler struct {
	svc *appsvcs.Services
}

func NewOrderHandler(svc *appsvcs.Services) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create places an order for the calling buyer.
//
//	@Summary	Place order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateOrderRequest	true	"Order"
//	@Success	201		{object}	OrderResponse
//	@Failure	404		{object}	httpx.ErrorBody	"ORDER001, ORDER002 or ORDER003"
//	@Failure	409		{object}	httpx.ErrorBody	"ORDER004"
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}
	items := make([]appsvcs.LineRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = appsvcs.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	o, err := h.svc.Orders.Create(r.Context(), appsvcs.CreateOrderParams{
		BuyerID:         p.UserID,
		SellerID:        req.SellerID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(i18n.FromCtx(r.Context()), o))
}

// Get returns an order to its buyer or seller.
//
//	@Summary	Get order
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	403	{object}	httpx.ErrorBody	"ORDER006"
//	@Failure	404	{object}	httpx.ErrorBody	"ORDER005"
//	@Router		/orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Orders.Get(r.Context(), p.UserID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(i18n.FromCtx(r.Context()), o))
}

// My lists the caller's purchases, newest first.
//
//	@Summary	My orders
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Zero-based page"
//	@Param		size	query		int	false	"Page size (max 100)"
//	@Success	200		{object}	OrderPage
//	@Router		/orders/my [get]
func (h *OrderHandler) My(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	page := httpx.ParsePage(r)
	orders, total, err := h.svc.Orders.My(r.Context(), p.UserID, queryOpts(page))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(toOrderResponses(i18n.FromCtx(r.Context()), orders), page, total))
}

// Sales lists orders placed with the calling seller.
//
//	@Summary	Seller orders
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Zero-based page"
//	@Param		size	query		int	false	"Page size (max 100)"
//	@Success	200		{object}	OrderPage
//	@Router		/orders/sales [get]
func (h *OrderHandler) Sales(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	page := httpx.ParsePage(r)
	orders, total, err := h.svc.Orders.Sales(r.Context(), p.UserID, queryOpts(page))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(toOrderResponses(i18n.FromCtx(r.Context()), orders), page, total))
}

// SalesStats summarises the calling seller's orders.
//
//	@Summary	Seller order statistics
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	SellerStatsResponse
//	@Router		/orders/sales/stats [get]
func (h *OrderHandler) SalesStats(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	stats, err := h.svc.Orders.SellerStats(r.Context(), p.UserID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToSellerStatsResponse(stats))
}

// UpdateStatus moves an order along its lifecycle. Seller only.
//
//	@Summary	Change order status
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Order ID"
//	@Param		status	query		string	true	"PAID, CONFIRMED, SHIPPING, DELIVERED or CANCELLED"
//	@Success	200		{object}	OrderResponse
//	@Failure	403		{object}	httpx.ErrorBody	"ORDER007"
//	@Failure	409		{object}	httpx.ErrorBody	"ORDER010"
//	@Router		/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, "status query parameter is required")
		return
	}
	o, err := h.svc.Orders.UpdateStatus(r.Context(), p.UserID, id, models.Status(status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(i18n.FromCtx(r.Context()), o))
}

// Cancel cancels a PENDING or PAID order. Buyer only.
//
//	@Summary	Cancel order
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	OrderResponse
//	@Failure	403	{object}	httpx.ErrorBody	"ORDER008"
//	@Failure	409	{object}	httpx.ErrorBody	"ORDER009"
//	@Router		/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Orders.Cancel(r.Context(), p.UserID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(i18n.FromCtx(r.Context()), o))
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryOpts(p httpx.PageRequest) repositories.QueryOpts {
	return repositories.QueryOpts{Limit: p.Limit(), Offset: p.Offset()}
}

func toOrderResponses(lang i18n.Lang, orders []*models.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(lang, o)
	}
	return out
}

func toOrderResponse(lang i18n.Lang, o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			ProductNameEn: it.ProductNameEn,
			DisplayName:   i18n.Pick(lang, it.ProductName, it.ProductNameEn),
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.Subtotal,
		}
	}
	address := o.ShippingAddress
	if address == nil {
		address = map[string]any{}
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		Total:           o.Total,
		Currency:        o.Currency,
		ShippingAddress: address,
		Status:          string(o.Status),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToSellerStatsResponse is shared with the admin seller report.
func ToSellerStatsResponse(s *models.SellerStats) SellerStatsResponse {
	counts := make(map[string]int, len(s.StatusCounts))
	for status, n := range s.StatusCounts {
		counts[string(status)] = n
	}
	return SellerStatsResponse{
		SellerID:     s.SellerID,
		TotalOrders:  s.TotalOrders,
		Revenue:      s.Revenue,
		StatusCounts: counts,
	}
}
