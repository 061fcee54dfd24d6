package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/logger"
)

const (
	CodeUnauthenticated = "SECURITY002"
	CodeForbidden       = "SECURITY003"
)

// TokenVerifier validates access tokens. *TokenIssuer implements it.
type TokenVerifier interface {
	ParseAccess(token string) (*Claims, error)
}

// RevocationChecker reports whether a token has been blacklisted on logout.
// *cache.TokenStore implements it.
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authenticate attaches a Principal to the request context when the request
// carries a valid, non-revoked bearer token. Requests without one pass through
// anonymously; use RequireUser or RequireRole to enforce authentication.
func Authenticate(verifier TokenVerifier, revoked RevocationChecker, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.ParseAccess(token)
			if err != nil {
				log.DebugContext(r.Context(), "rejected bearer token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if revoked != nil {
				blacklisted, err := revoked.IsBlacklisted(r.Context(), token)
				if err != nil {
					log.WarnContext(r.Context(), "token blacklist lookup failed", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				if blacklisted {
					log.DebugContext(r.Context(), "blacklisted token used")
					next.ServeHTTP(w, r)
					return
				}
			}

			p, err := claims.Principal()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			logger.Annotate(r.Context(), "user_id", p.UserID.String(), "role", p.Role)
			ctx := WithPrincipal(r.Context(), p)
			ctx = withAccessToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a Principal with 401 SECURITY002.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := PrincipalFromCtx(r.Context()); err != nil {
			httpx.JSONErrorCode(w, http.StatusUnauthorized, CodeUnauthenticated, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and principals holding none
// of roles with 403 SECURITY003.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSONErrorCode(w, http.StatusUnauthorized, CodeUnauthenticated, err.Error())
				return
			}
			if !p.HasRole(roles...) {
				httpx.JSONErrorCode(w, http.StatusForbidden, CodeForbidden, ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits admin bearer principals and admin console sessions.
// A valid session loads its Principal into the request context so handlers
// behind it read the caller the same way in both cases.
func RequireAdmin(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, err := PrincipalFromCtx(r.Context()); err == nil {
				if !p.IsAdmin() {
					httpx.JSONErrorCode(w, http.StatusForbidden, CodeForbidden, ErrForbidden.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			p, err := AdminFromSession(r, store)
			if err != nil {
				log.WarnContext(r.Context(), "admin session rejected", "error", err)
				httpx.JSONErrorCode(w, http.StatusUnauthorized, CodeUnauthenticated, ErrUnauthenticated.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
