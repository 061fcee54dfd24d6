package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/payment/application/services"
	"github.com/spicyjump/storefront/services/payment/domain/models"
)

type CreatePaymentRequest struct {
	OrderID  uuid.UUID       `json:"order_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required,money" swaggertype:"string" example:"31.00"`
	Method   string          `json:"method" validate:"required" example:"CARD"`
	Provider string          `json:"provider" validate:"required" example:"TOSS"`
} // @name CreatePaymentRequest

type TossConfirmRequest struct {
	PaymentKey string          `json:"payment_key" validate:"required"`
	OrderID    uuid.UUID       `json:"order_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required,money" swaggertype:"string" example:"31.00"`
} // @name TossConfirmRequest

type NicePayConfirmRequest struct {
	TID     string    `json:"tid" validate:"required"`
	OrderID uuid.UUID `json:"order_id" validate:"required"`
} // @name NicePayConfirmRequest

type StripeIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
} // @name StripeIntentRequest

type StripeConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
} // @name StripeConfirmRequest

type PaymentResponse struct {
	ID                    uuid.UUID       `json:"id"`
	OrderID               uuid.UUID       `json:"order_id"`
	BuyerID               uuid.UUID       `json:"buyer_id"`
	Amount                decimal.Decimal `json:"amount" swaggertype:"string" example:"31.00"`
	Currency              string          `json:"currency" example:"USD"`
	Method                string          `json:"method" example:"CARD"`
	Provider              string          `json:"provider" example:"TOSS"`
	Status                string          `json:"status" example:"COMPLETED"`
	ProviderTransactionID string          `json:"provider_transaction_id,omitempty"`
	ProviderResponse      json.RawMessage `json:"provider_response,omitempty" swaggertype:"object"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	RefundReason          string          `json:"refund_reason,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
	RefundedAt            *time.Time      `json:"refunded_at,omitempty"`
	UpdatedAt             time.Time       `json:"updated_at"`
} // @name PaymentResponse

type StripeIntentResponse struct {
	PaymentID       uuid.UUID       `json:"payment_id"`
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"31.00"`
	Currency        string          `json:"currency" example:"USD"`
} // @name StripeIntentResponse

// PaymentHandler serves the authenticated /payments endpoints.
type PaymentHandler struct {
	svc *appsvcs.Services
}

func NewPaymentHandler(svc *appsvcs.Services) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Create opens a pending payment for one of the caller's orders.
//
//	@Summary	Create payment
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreatePaymentRequest	true	"Payment"
//	@Success	201		{object}	PaymentResponse
//	@Failure	400		{object}	httpx.ErrorBody	"PAYMENT002 or PAYMENT008"
//	@Failure	403		{object}	httpx.ErrorBody	"PAYMENT010"
//	@Failure	404		{object}	httpx.ErrorBody	"PAYMENT001"
//	@Failure	409		{object}	httpx.ErrorBody	"PAYMENT003"
//	@Router		/payments [post]
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreatePaymentRequest](w, r)
	if !ok {
		return
	}
	payment, err := h.svc.Payments.Create(r.Context(), p.UserID, appsvcs.CreatePaymentParams{
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Method:   req.Method,
		Provider: req.Provider,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

// ConfirmToss approves a Toss payment with the key from the Toss widget.
//
//	@Summary	Confirm Toss payment
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		TossConfirmRequest	true	"Toss confirmation"
//	@Success	200		{object}	PaymentResponse
//	@Failure	400		{object}	httpx.ErrorBody	"PAYMENT002"
//	@Failure	409		{object}	httpx.ErrorBody	"PAYMENT005"
//	@Failure	502		{object}	httpx.ErrorBody	"PAYMENT006"
//	@Router		/payments/toss/confirm [post]
func (h *PaymentHandler) ConfirmToss(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[TossConfirmRequest](w, r)
	if !ok {
		return
	}
	payment, err := h.svc.Payments.ConfirmToss(r.Context(), p.UserID, appsvcs.TossConfirmParams{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

// ConfirmNicePay approves a NicePay transaction.
//
//	@Summary	Confirm NicePay payment
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		NicePayConfirmRequest	true	"NicePay confirmation"
//	@Success	200		{object}	PaymentResponse
//	@Failure	409		{object}	httpx.ErrorBody	"PAYMENT005"
//	@Failure	502		{object}	httpx.ErrorBody	"PAYMENT006"
//	@Router		/payments/nicepay/confirm [post]
func (h *PaymentHandler) ConfirmNicePay(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[NicePayConfirmRequest](w, r)
	if !ok {
		return
	}
	payment, err := h.svc.Payments.ConfirmNicePay(r.Context(), p.UserID, req.TID, req.OrderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

// StripeIntent creates or reuses a PaymentIntent for the order.
//
//	@Summary	Create Stripe PaymentIntent
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		StripeIntentRequest	true	"Order"
//	@Success	200		{object}	StripeIntentResponse
//	@Failure	400		{object}	httpx.ErrorBody	"PAYMENT008"
//	@Failure	409		{object}	httpx.ErrorBody	"PAYMENT003"
//	@Router		/payments/stripe/intent [post]
func (h *PaymentHandler) StripeIntent(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StripeIntentRequest](w, r)
	if !ok {
		return
	}
	in, err := h.svc.Payments.CreateStripeIntent(r.Context(), p.UserID, req.OrderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StripeIntentResponse{
		PaymentID:       in.Payment.ID,
		PaymentIntentID: in.IntentID,
		ClientSecret:    in.ClientSecret,
		Amount:          in.Payment.Amount,
		Currency:        in.Payment.Currency,
	})
}

// ConfirmStripe completes a payment whose intent has succeeded.
//
//	@Summary	Confirm Stripe payment
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		StripeConfirmRequest	true	"Intent"
//	@Success	200		{object}	PaymentResponse
//	@Failure	404		{object}	httpx.ErrorBody	"PAYMENT004"
//	@Failure	502		{object}	httpx.ErrorBody	"PAYMENT006"
//	@Router		/payments/stripe/confirm [post]
func (h *PaymentHandler) ConfirmStripe(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StripeConfirmRequest](w, r)
	if !ok {
		return
	}
	payment, err := h.svc.Payments.ConfirmStripe(r.Context(), p.UserID, req.PaymentIntentID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

// Get returns a payment to its buyer or an admin.
//
//	@Summary	Get payment
//	@Tags		payments
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Payment ID"
//	@Success	200	{object}	PaymentResponse
//	@Failure	403	{object}	httpx.ErrorBody	"PAYMENT010"
//	@Failure	404	{object}	httpx.ErrorBody	"PAYMENT004"
//	@Router		/payments/{id} [get]
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.svc.Payments.Get(r.Context(), c, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

// ByOrder lists an order's payments, newest first.
//
//	@Summary	Payments for an order
//	@Tags		payments
//	@Produce	json
//	@Security	BearerAuth
//	@Param		orderId	path		string	true	"Order ID"
//	@Success	200		{array}		PaymentResponse
//	@Failure	403		{object}	httpx.ErrorBody	"PAYMENT010"
//	@Failure	404		{object}	httpx.ErrorBody	"PAYMENT001"
//	@Router		/payments/order/{orderId} [get]
func (h *PaymentHandler) ByOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orderId")
	if !ok {
		return
	}
	payments, err := h.svc.Payments.ByOrder(r.Context(), c, orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Refund returns a completed payment through its provider.
//
//	@Summary	Refund payment
//	@Tags		payments
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Payment ID"
//	@Param		reason	query		string	false	"Refund reason"
//	@Success	200		{object}	PaymentResponse
//	@Failure	400		{object}	httpx.ErrorBody	"PAYMENT008"
//	@Failure	409		{object}	httpx.ErrorBody	"PAYMENT007"
//	@Failure	502		{object}	httpx.ErrorBody	"PAYMENT009"
//	@Router		/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.svc.Payments.Refund(r.Context(), c, id, r.URL.Query().Get("reason"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaymentResponse(payment))
}

func caller(w http.ResponseWriter, r *http.Request) (appsvcs.Caller, bool) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return appsvcs.Caller{}, false
	}
	return appsvcs.Caller{UserID: p.UserID, Admin: p.IsAdmin()}, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toPaymentResponse(p *models.Payment) PaymentResponse {
	out := PaymentResponse{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		BuyerID:               p.BuyerID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Method:                string(p.Method),
		Provider:              string(p.Provider),
		Status:                string(p.Status),
		ProviderTransactionID: p.ProviderTxID,
		FailureReason:         p.FailureReason,
		RefundReason:          p.RefundReason,
		CreatedAt:             p.CreatedAt,
		PaidAt:                p.PaidAt,
		RefundedAt:            p.RefundedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	if json.Valid(p.ProviderResponse) {
		out.ProviderResponse = p.ProviderResponse
	}
	return out
}
