package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/logger"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	"github.com/spicyjump/storefront/services/payment/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/payment/application/services"
)

// Routes registers /payments. Webhooks are public and authenticate the
// provider themselves; everything else needs a token.
func Routes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	h := handlers.NewPaymentHandler(svcs)
	hooks := handlers.NewWebhookHandler(svcs, log)

	r.Route("/payments", func(r chi.Router) {
		r.Route("/webhook", func(r chi.Router) {
			r.Post("/toss", hooks.Toss)
			r.Post("/nicepay", hooks.NicePay)
			r.Post("/stripe", hooks.Stripe)
			r.Get("/test", hooks.Test)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Post("/", h.Create)
			r.Post("/toss/confirm", h.ConfirmToss)
			r.Post("/nicepay/confirm", h.ConfirmNicePay)
			r.Post("/stripe/intent", h.StripeIntent)
			r.Post("/stripe/confirm", h.ConfirmStripe)
			r.Get("/order/{orderId}", h.ByOrder)
			r.Get("/{id}", h.Get)
			r.Post("/{id}/refund", h.Refund)
		})
	})
}

func New(r chi.Router, a *app.Application, ordering *orderingsvcs.Services) *appsvcs.Services {
	svcs := appsvcs.New(a, ordering)
	Routes(r, svcs, a.Logger)
	return svcs
}
