package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	"github.com/spicyjump/storefront/services/ordering/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
)

// Routes registers /orders. Every endpoint needs a token; the seller views
// additionally need the SELLER or ADMIN role.
func Routes(r chi.Router, svcs *appsvcs.Services) {
	h := handlers.NewOrderHandler(svcs)

	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/", h.Create)
		r.Get("/my", h.My)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleSeller, auth.RoleAdmin))
			r.Get("/sales", h.Sales)
			r.Get("/sales/stats", h.SalesStats)
			r.Patch("/{id}/status", h.UpdateStatus)
		})

		r.Get("/{id}", h.Get)
		r.Post("/{id}/cancel", h.Cancel)
	})
}

func New(r chi.Router, a *app.Application, identity *identitysvcs.Services, catalog *catalogsvcs.Services) *appsvcs.Services {
	svcs := appsvcs.New(a, identity, catalog)
	Routes(r, svcs)
	return svcs
}
