package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/logger"
	appsvcs "github.com/spicyjump/storefront/services/payment/application/services"
)

// maxWebhookBody caps what a provider may post to us.
const maxWebhookBody = 64 << 10

// niceStatuses maps NicePay callback statuses onto the Toss-style names the
// payment service understands.
var niceStatuses = map[string]string{
	"paid":      "DONE",
	"cancelled": "CANCELED",
	"failed":    "ABORTED",
	"expired":   "EXPIRED",
}

type WebhookAck struct {
	Received bool `json:"received" example:"true"`
} // @name WebhookAck

// WebhookHandler receives provider notifications. Providers retry anything
// but a 200, so failures are logged and still acknowledged.
type WebhookHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewWebhookHandler(svc *appsvcs.Services, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// Toss handles Toss Payments status notifications.
//
//	@Summary	Toss webhook
//	@Tags		webhooks
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	WebhookAck
//	@Router		/payments/webhook/toss [post]
func (h *WebhookHandler) Toss(w http.ResponseWriter, r *http.Request) {
	defer ack(w)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil || !gjson.ValidBytes(body) {
		h.log.WarnContext(r.Context(), "unreadable toss webhook", "error", err)
		return
	}
	doc := gjson.ParseBytes(body)
	eventType := doc.Get("eventType").String()
	paymentKey := doc.Get("data.paymentKey").String()
	status := doc.Get("data.status").String()
	if paymentKey == "" || status == "" {
		h.log.WarnContext(r.Context(), "toss webhook without payment key or status", "event_type", eventType)
		return
	}
	if err := h.svc.Payments.UpdateFromProvider(r.Context(), paymentKey, status); err != nil {
		h.log.ErrorContext(r.Context(), "toss webhook failed",
			"event_type", eventType,
			"payment_key", paymentKey,
			"order_id", doc.Get("data.orderId").String(),
			"error", err,
		)
	}
}

// NicePay handles NicePay result callbacks.
//
//	@Summary	NicePay webhook
//	@Tags		webhooks
//	@Produce	json
//	@Param		tid			query		string	true	"Transaction ID"
//	@Param		resultCode	query		string	false	"Result code"
//	@Param		status		query		string	true	"paid, cancelled, failed or expired"
//	@Success	200			{object}	WebhookAck
//	@Router		/payments/webhook/nicepay [post]
func (h *WebhookHandler) NicePay(w http.ResponseWriter, r *http.Request) {
	defer ack(w)
	q := r.URL.Query()
	tid := q.Get("tid")
	status, ok := niceStatuses[strings.ToLower(q.Get("status"))]
	if tid == "" || !ok {
		h.log.WarnContext(r.Context(), "ignoring nicepay webhook", "tid", tid, "status", q.Get("status"), "result_code", q.Get("resultCode"))
		return
	}
	if err := h.svc.Payments.UpdateFromProvider(r.Context(), tid, status); err != nil {
		h.log.ErrorContext(r.Context(), "nicepay webhook failed", "tid", tid, "result_code", q.Get("resultCode"), "error", err)
	}
}

// Stripe handles signed Stripe events.
//
//	@Summary	Stripe webhook
//	@Tags		webhooks
//	@Accept		json
//	@Produce	json
//	@Param		Stripe-Signature	header		string	true	"Stripe signature"
//	@Success	200					{object}	WebhookAck
//	@Router		/payments/webhook/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	defer ack(w)
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.log.WarnContext(r.Context(), "unreadable stripe webhook", "error", err)
		return
	}
	if err := h.svc.Payments.HandleStripeWebhook(r.Context(), body, r.Header.Get("Stripe-Signature")); err != nil {
		h.log.ErrorContext(r.Context(), "stripe webhook failed", "error", err)
	}
}

// Test lets providers check the endpoint is reachable.
//
//	@Summary	Webhook reachability check
//	@Tags		webhooks
//	@Produce	json
//	@Success	200	{object}	WebhookAck
//	@Router		/payments/webhook/test [get]
func (h *WebhookHandler) Test(w http.ResponseWriter, _ *http.Request) {
	ack(w)
}

func ack(w http.ResponseWriter) {
	httpx.JSON(w, http.StatusOK, WebhookAck{Received: true})
}
