package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spicyjump/storefront/pkg/logger"
	admindomain "github.com/spicyjump/storefront/services/admin/domain"
	"github.com/spicyjump/storefront/services/admin/domain/models"
	"github.com/spicyjump/storefront/services/admin/domain/ports"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	identitymodels "github.com/spicyjump/storefront/services/identity/domain/models"
)

// Accounts is the slice of identity the admin console drives directly.
type Accounts interface {
	SetStatus(ctx context.Context, userID uuid.UUID, status identitymodels.Status) (*identitymodels.User, error)
}

// ReportService builds the dashboard and per-user analytics.
type ReportService struct {
	orders  ports.Orders
	users   ports.Users
	reviews ports.Reviews
	log     logger.Logger
	now     func() time.Time
}

func NewReportService(orders ports.Orders, users ports.Users, reviews ports.Reviews, log logger.Logger) *ReportService {
	return &ReportService{
		orders:  orders,
		users:   users,
		reviews: reviews,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DashboardParams selects the reporting window. Start and End override Period
// only when both are set.
type DashboardParams struct {
	Period models.Period
	Start  *time.Time
	End    *time.Time
}

// Dashboard gathers revenue, order and user figures for the window. The
// current window, the previous window and the user counts are fetched
// concurrently.
func (s *ReportService) Dashboard(ctx context.Context, p DashboardParams) (*models.Dashboard, error) {
	window, err := models.ResolveRange(p.Period, p.Start, p.End, s.now())
	if err != nil {
		return nil, err
	}
	period := p.Period
	if period == "" {
		period = models.PeriodMonth
	}

	var (
		current, previous ports.OrderTotals
		active, joined    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.orders.PeriodTotals(gctx, window.From, window.To)
		if err != nil {
			return fmt.Errorf("current window: %w", err)
		}
		current = t
		return nil
	})
	g.Go(func() error {
		prev := window.Previous()
		t, err := s.orders.PeriodTotals(gctx, prev.From, prev.To)
		if err != nil {
			return fmt.Errorf("previous window: %w", err)
		}
		previous = t
		return nil
	})
	g.Go(func() error {
		var err error
		active, joined, err = s.users.Growth(gctx, window.From, window.To)
		if err != nil {
			return fmt.Errorf("user growth: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return &models.Dashboard{
		Period:  period,
		Range:   window,
		Revenue: models.NewRevenueStats(current.Revenue, previous.Revenue, window.Days()),
		Orders: models.OrderStats{
			Total:     current.Orders,
			Completed: current.Completed,
			Cancelled: current.Cancelled,
		},
		Users: models.UserStats{TotalActive: active, New: joined},
	}, nil
}

// UserBehavior scores a user from their purchases and reviews.
func (s *ReportService) UserBehavior(ctx context.Context, userID uuid.UUID) (*models.UserBehavior, error) {
	orders, spent, err := s.orders.BuyerTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buyer totals: %w", err)
	}
	reviews, err := s.reviews.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("review count: %w", err)
	}
	b := models.NewUserBehavior(userID, orders, reviews, spent)
	return &b, nil
}

// SessionRevoker ends the admin console sessions of a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

// UserAdminService applies admin decisions to accounts.
type UserAdminService struct {
	accounts Accounts
	sessions SessionRevoker
	log      logger.Logger
}

// NewUserAdminService builds the service. sessions may be nil when the
// process keeps no console sessions.
func NewUserAdminService(accounts Accounts, sessions SessionRevoker, log logger.Logger) *UserAdminService {
	return &UserAdminService{accounts: accounts, sessions: sessions, log: log}
}

// SetStatus changes userID's status on behalf of adminID. Admins cannot
// change their own account.
func (s *UserAdminService) SetStatus(ctx context.Context, adminID, userID uuid.UUID, status identitymodels.Status) (*identitymodels.User, error) {
	if adminID == userID {
		return nil, admindomain.ErrSelfStatusChange
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", identitydomain.ErrInvalidUser, status)
	}
	u, err := s.accounts.SetStatus(ctx, userID, status)
	if err != nil {
		if !errors.Is(err, identitydomain.ErrUserNotFound) {
			s.log.ErrorContext(ctx, "admin status change failed", "admin_id", adminID, "user_id", userID, "error", err)
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "admin changed user status", "admin_id", adminID, "user_id", userID, "status", status)
	if status != identitymodels.StatusActive && s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "console sessions not revoked", "user_id", userID, "error", err)
		}
	}
	return u, nil
}
