package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	catalogsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	"github.com/spicyjump/storefront/services/review/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/review/application/services"
)

// Routes registers /reviews. Reads are public; writes need a token.
func Routes(r chi.Router, svcs *appsvcs.Services) {
	h := handlers.NewReviewHandler(svcs)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/latest", h.Latest)
		r.Get("/product/{productId}", h.ByProduct)
		r.Get("/product/{productId}/summary", h.Summary)
		r.Get("/product/{productId}/verified", h.Verified)
		r.Get("/product/{productId}/rating/{rating}", h.ByRating)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Post("/", h.Create)
			r.Get("/my", h.My)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})

		r.Get("/{id}", h.Get)
	})
}

func New(r chi.Router, a *app.Application, identity *identitysvcs.Services, catalog *catalogsvcs.Services, ordering *orderingsvcs.Services) *appsvcs.Services {
	svcs := appsvcs.New(a, identity, catalog, ordering)
	Routes(r, svcs)
	return svcs
}
