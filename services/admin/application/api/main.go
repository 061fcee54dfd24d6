package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/services/admin/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/admin/application/services"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	reviewsvcs "github.com/spicyjump/storefront/services/review/application/services"
)

// Routes registers /admin. Everything but the session endpoints needs an
// admin session cookie or an admin bearer token.
func Routes(r chi.Router, svcs *appsvcs.Services, store sessions.Store, log logger.Logger) {
	h := handlers.NewAdminHandler(svcs, store, log)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/session", h.Login)
		r.Delete("/session", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(store, log))
			r.Get("/dashboard", h.Dashboard)
			r.Get("/users", h.Users)
			r.Patch("/users/{id}/status", h.UpdateUserStatus)
			r.Get("/users/{id}/behavior", h.UserBehavior)
			r.Get("/products/top-selling", h.TopSelling)
			r.Get("/sellers/{id}/stats", h.SellerStats)
		})
	})
}

func New(r chi.Router, a *app.Application, identity *identitysvcs.Services, ordering *orderingsvcs.Services, review *reviewsvcs.Services) *appsvcs.Services {
	svcs := appsvcs.New(a, identity, ordering, review)
	Routes(r, svcs, a.SessionStore, a.Logger)
	return svcs
}
