package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Role names shared by every service. identity owns the user record; other
// services only see the role through the Principal.
const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const (
	principalKey   contextKey = "principal"
	accessTokenKey contextKey = "access_token"
)

// ErrUnauthenticated is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden is returned when the Principal lacks the required role.
var ErrForbidden = errors.New("access denied")

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal is an administrator.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalFromCtx extracts the authenticated caller from the request context.
// Returns ErrUnauthenticated if none is set.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// WithPrincipal returns a new context carrying p.
// Used by authentication middleware after validating a token or session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// AccessTokenFromCtx returns the raw bearer token the request was
// authenticated with, or "" for session-authenticated requests.
func AccessTokenFromCtx(ctx context.Context) string {
	tok, _ := ctx.Value(accessTokenKey).(string)
	return tok
}

func withAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey, token)
}
