package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/identity/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// UserFilter narrows List. Zero values match everything.
type UserFilter struct {
	Status models.Status
	Role   models.Role
}

// UserRepository is the persistence interface for the User aggregate.
type UserRepository interface {
	// Create returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByEmail expects a normalised email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists every mutable field of u.
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, f UserFilter, opts QueryOpts) ([]*models.User, int, error)
	// Growth counts ACTIVE accounts and accounts created in [from, to).
	Growth(ctx context.Context, from, to time.Time) (active, joined int, err error)
}
