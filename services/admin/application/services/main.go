package services

import (
	"github.com/spicyjump/storefront/pkg/app"
	identitysvcs "github.com/spicyjump/storefront/services/identity/application/services"
	orderingsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	reviewsvcs "github.com/spicyjump/storefront/services/review/application/services"
)

// Services is the application-layer service container for the admin
// context. The admin context owns no tables; it reads and acts through the
// other contexts' services.
type Services struct {
	Reports *ReportService
	Users   *UserAdminService

	Identity *identitysvcs.Services
	Ordering *orderingsvcs.Services
}

// New builds the admin services. Console sessions are revoked on suspension
// when the session store supports it.
func New(a *app.Application, identity *identitysvcs.Services, ordering *orderingsvcs.Services, review *reviewsvcs.Services) *Services {
	var revoker SessionRevoker
	if rv, ok := a.SessionStore.(SessionRevoker); ok {
		revoker = rv
	}
	return &Services{
		Reports: NewReportService(
			orderLedger{orders: ordering.Orders},
			userGrowth{auth: identity.Auth},
			reviewCounter{reviews: review.Reviews},
			a.Logger,
		),
		Users:    NewUserAdminService(identity.Auth, revoker, a.Logger),
		Identity: identity,
		Ordering: ordering,
	}
}
