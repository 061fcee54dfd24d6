package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/ratelimit"
	"github.com/spicyjump/storefront/services/identity/application/handlers"
	appsvcs "github.com/spicyjump/storefront/services/identity/application/services"
)

// Routes registers the /auth endpoints. Register, login and refresh are
// rate limited per client IP to perMinute requests.
func Routes(r chi.Router, svcs *appsvcs.Services, limiter *ratelimit.Limiter, perMinute int) {
	h := handlers.NewAuthHandler(svcs)
	perIP := limiter.Middleware(ratelimit.Rule{
		Type:   ratelimit.ByIP,
		Limit:  int64(perMinute),
		Window: time.Minute,
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(perIP).Post("/register", h.Register)
		r.With(perIP).Post("/login", h.Login)
		r.With(perIP).Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/password", h.ChangePassword)
		})
	})
}

// New builds the identity services and registers their routes. The returned
// Services back the user lookups of the other contexts.
func New(r chi.Router, a *app.Application, limiter *ratelimit.Limiter) *appsvcs.Services {
	svcs := appsvcs.New(a)
	Routes(r, svcs, limiter, a.Config.AuthRateLimitPerMinute)
	return svcs
}
