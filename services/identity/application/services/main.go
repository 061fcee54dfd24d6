package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	"github.com/spicyjump/storefront/pkg/cache"
	"github.com/spicyjump/storefront/services/identity/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the identity context.
type Services struct {
	Auth *AuthService
}

// New wires the identity services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewUserRepository(a.Db)
	return &Services{
		Auth: NewAuthService(repo, cache.NewTokenStore(a.Redis), a.Tokens, a.Metrics, a.Logger),
	}
}
