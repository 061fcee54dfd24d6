package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/services/catalog/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the catalog context.
type Services struct {
	Categories *CategoryService
	Products   *ProductService
}

// New wires the catalog services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	categories := postgres.NewCategoryRepository(a.Db)
	products := postgres.NewProductRepository(a.Db)
	return &Services{
		Categories: NewCategoryService(categories),
		Products: NewProductService(
			products,
			categories,
			cache.NewProductCache(a.Redis),
			cache.NewViewCounter(a.Redis),
			a.Storage,
			a.Logger,
		),
	}
}
