package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/logger"
	"github.com/spicyjump/storefront/pkg/telemetry"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	"github.com/spicyjump/storefront/services/identity/domain/models"
	"github.com/spicyjump/storefront/services/identity/domain/repositories"
)

// TokenStore keeps refresh tokens and the revocation list. cache.TokenStore
// implements it.
type TokenStore interface {
	SaveRefresh(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	RefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	DeleteRefresh(ctx context.Context, userID uuid.UUID) error
	Blacklist(ctx context.Context, token string, remaining time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Session is the result of a login or refresh.
type Session struct {
	Tokens *auth.TokenPair
	User   *models.User
}

// AuthService owns registration, credentials and the token lifecycle.
type AuthService struct {
	users   repositories.UserRepository
	tokens  TokenStore
	issuer  *auth.TokenIssuer
	metrics *telemetry.Metrics
	log     logger.Logger
	now     func() time.Time
}

func NewAuthService(
	users repositories.UserRepository,
	tokens TokenStore,
	issuer *auth.TokenIssuer,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		issuer:  issuer,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// Register creates an ACTIVE buyer or seller account.
func (s *AuthService) Register(ctx context.Context, p models.NewUserParams) (*models.User, error) {
	u, err := models.NewUser(p, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identitydomain.ErrInvalidUser, err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate checks credentials and account status without issuing tokens.
// The admin console reuses it for session login.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, identitydomain.ErrUserNotFound) {
		s.metrics.LoginFailed(ctx, "unknown_email")
		return nil, identitydomain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !u.CheckPassword(password) {
		s.metrics.LoginFailed(ctx, "bad_password")
		return nil, identitydomain.ErrInvalidCredentials
	}
	switch u.Status {
	case models.StatusSuspended:
		s.metrics.LoginFailed(ctx, "suspended")
		return nil, identitydomain.ErrAccountSuspended
	case models.StatusInactive:
		s.metrics.LoginFailed(ctx, "inactive")
		return nil, identitydomain.ErrAccountInactive
	}

	u.RecordLogin(s.now())
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return u, nil
}

// Login authenticates and issues a token pair. The refresh token is stored so
// that only the latest one can be exchanged.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return &Session{Tokens: pair, User: u}, nil
}

// Refresh exchanges a refresh token for a new pair and rotates the stored token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identitydomain.ErrInvalidRefreshToken, err)
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, identitydomain.ErrInvalidRefreshToken
	}

	revoked, err := s.tokens.IsBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("check refresh revocation: %w", err)
	}
	if revoked {
		return nil, identitydomain.ErrInvalidRefreshToken
	}
	stored, err := s.tokens.RefreshToken(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if stored != refreshToken {
		return nil, identitydomain.ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if u.Status != models.StatusActive {
		return nil, identitydomain.ErrUserNotActive
	}

	pair, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Session{Tokens: pair, User: u}, nil
}

// Logout revokes both tokens for their remaining lifetime and forgets the
// stored refresh token. refreshToken may be empty.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string) error {
	revoke := []struct {
		token string
		parse func(string) (*auth.Claims, error)
	}{
		{accessToken, s.issuer.ParseAccess},
		{refreshToken, s.issuer.ParseRefresh},
	}
	for _, r := range revoke {
		if r.token == "" {
			continue
		}
		// Only the caller's own valid tokens reach the blacklist.
		claims, err := r.parse(r.token)
		if err != nil || claims.Subject != userID.String() {
			s.log.WarnContext(ctx, "logout token ignored", "user_id", userID, "error", err)
			continue
		}
		if err := s.tokens.Blacklist(ctx, r.token, s.issuer.Remaining(r.token)); err != nil {
			return fmt.Errorf("blacklist token: %w", err)
		}
	}
	if err := s.tokens.DeleteRefresh(ctx, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	s.log.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// Profile returns the user or ErrUserNotFound.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := u.ApplyProfile(upd, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", identitydomain.ErrInvalidUser, err)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one and
// drops the stored refresh token so other sessions must log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !u.CheckPassword(current) {
		return identitydomain.ErrInvalidCredentials
	}
	if err := u.SetPassword(next); err != nil {
		return fmt.Errorf("%w: %w", identitydomain.ErrInvalidUser, err)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.tokens.DeleteRefresh(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "refresh token not cleared after password change", "user_id", userID, "error", err)
	}
	return nil
}

// Exists reports whether a user with id exists. Other contexts use it through
// their ports.
func (s *AuthService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.users.GetByID(ctx, id)
	if errors.Is(err, identitydomain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return true, nil
}

// ListUsers pages through accounts, optionally filtered by status.
func (s *AuthService) ListUsers(ctx context.Context, status models.Status, opts repositories.QueryOpts) ([]*models.User, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", identitydomain.ErrInvalidUser, status)
	}
	users, total, err := s.users.List(ctx, repositories.UserFilter{Status: status}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Growth returns the number of active accounts and of sign-ups in [from, to).
func (s *AuthService) Growth(ctx context.Context, from, to time.Time) (active, joined int, err error) {
	return s.users.Growth(ctx, from, to)
}

// SetStatus changes an account's status. Suspending or deactivating also
// drops the stored refresh token.
func (s *AuthService) SetStatus(ctx context.Context, userID uuid.UUID, status models.Status) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if err := u.SetStatus(status, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", identitydomain.ErrInvalidUser, err)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if status != models.StatusActive {
		if err := s.tokens.DeleteRefresh(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "refresh token not cleared", "user_id", userID, "error", err)
		}
	}
	s.log.InfoContext(ctx, "user status changed", "user_id", userID, "status", status)
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User) (*auth.TokenPair, error) {
	pair, err := s.issuer.IssuePair(Principal(u))
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.tokens.SaveRefresh(ctx, u.ID, pair.RefreshToken, s.issuer.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Principal is the request identity of u.
func Principal(u *models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
}
