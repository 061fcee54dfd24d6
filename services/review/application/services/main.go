package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/events"
	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	"github.com/spicyjump/storefront/services/review/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the review context.
type Services struct {
	Reviews *ReviewService
}

func New(a *app.Application, identity *identitysvcs.Services, catalog *catalogsvcs.Services, ordering *orderingsvcs.Services) *Services {
	var pub events.TxPublisher
	if a.EventBus != nil {
		pub = a.EventBus
	}
	return &Services{
		Reviews: NewReviewService(
			postgres.NewReviewRepository(a.Db, pub),
			userDirectory{auth: identity.Auth},
			productCatalog{products: catalog.Products},
			purchaseHistory{orders: ordering.Orders},
			a.Logger,
		),
	}
}
