package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/services/catalog/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
)

// Routes registers the /categories and /products endpoints. Reads are public;
// product writes need a SELLER or ADMIN token.
func Routes(r chi.Router, svcs *appsvcs.Services) {
	ch := handlers.NewCategoryHandler(svcs)
	ph := handlers.NewProductHandler(svcs)

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", ch.List)
		r.Get("/search", ch.Search)
		r.Get("/{id}", ch.Get)
		r.Get("/{id}/children", ch.Children)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", ph.List)
		r.Get("/search", ph.Search)
		r.Get("/popular", ph.Popular)
		r.Get("/top-rated", ph.TopRated)
		r.Get("/latest", ph.Latest)
		r.Get("/category/{categoryId}", ph.ByCategory)
		r.Get("/seller/{sellerId}", ph.BySeller)
		r.Get("/{id}", ph.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleSeller, auth.RoleAdmin))
			r.Post("/", ph.Create)
			r.Put("/{id}", ph.Update)
			r.Delete("/{id}", ph.Delete)
			r.Patch("/{id}/status", ph.ChangeStatus)
			r.Post("/{id}/images/upload-url", ph.UploadURL)
		})
	})
}

// New builds the catalog services and registers their routes. The returned
// Services are shared with the contexts that call into the catalog.
func New(r chi.Router, a *app.Application) *appsvcs.Services {
	svcs := appsvcs.New(a)
	Routes(r, svcs)
	return svcs
}
