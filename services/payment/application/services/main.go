package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/events"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	"github.com/spicyjump/storefront/services/payment/infrastructure/gateways"
	"github.com/spicyjump/storefront/services/payment/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the payment context.
type Services struct {
	Payments *PaymentService
}

// New wires the payment services. Stripe is only enabled when a secret key is
// configured.
func New(a *app.Application, ordering *orderingsvcs.Services) *Services {
	var pub events.TxPublisher
	if a.EventBus != nil {
		pub = a.EventBus
	}
	cfg := a.Config
	gw := Gateways{
		Toss:    gateways.NewToss(cfg.TossAPIURL, cfg.TossSecretKey),
		NicePay: gateways.NewNicePay(cfg.NicePayAPIURL, cfg.NicePayClientID, cfg.NicePaySecretKey),
	}
	if cfg.StripeSecretKey != "" {
		gw.Stripe = gateways.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	return &Services{
		Payments: NewPaymentService(
			postgres.NewPaymentRepository(a.Db, pub),
			orderDirectory{orders: ordering.Orders},
			gw,
			a.Metrics,
			a.Logger,
		),
	}
}
