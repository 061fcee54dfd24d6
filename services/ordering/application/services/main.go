package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/events"
	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	"github.com/spicyjump/storefront/services/ordering/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the ordering context.
type Services struct {
	Orders *OrderService
}

// New wires the ordering services. Buyers and sellers are checked through
// identity and stock is reserved through the catalog.
func New(a *app.Application, identity *identitysvcs.Services, catalog *catalogsvcs.Services) *Services {
	var pub events.TxPublisher
	if a.EventBus != nil {
		pub = a.EventBus
	}
	repo := postgres.NewOrderRepository(a.Db, pub)
	return &Services{
		Orders: NewOrderService(
			repo,
			userDirectory{auth: identity.Auth},
			productCatalog{products: catalog.Products},
			a.Config.OrderPaymentTimeout,
			a.Metrics,
			a.Logger,
		),
	}
}
