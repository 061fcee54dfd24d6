package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spicyjump/storefront/pkg/database"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	"github.com/spicyjump/storefront/services/identity/domain/models"
	"github.com/spicyjump/storefront/services/identity/domain/repositories"
	"github.com/spicyjump/storefront/services/identity/infrastructure/persistence/postgres/db"
)

const uniqueViolation = "23505"

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

func NewUserRepository(database *database.Database) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts u. Returns ErrEmailTaken on the email unique index.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	q := db.New(r.db.DB())
	if err := q.InsertUser(ctx, db.InsertUserParams{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Name:             u.Name,
		Phone:            nullString(u.Phone),
		Role:             string(u.Role),
		Status:           string(u.Status),
		Language:         string(u.Language),
		MarketingConsent: u.MarketingConsent,
		LastLoginAt:      nullTime(u),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identitydomain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row, err := db.New(r.db.DB()).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identitydomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	n, err := db.New(r.db.DB()).UpdateUser(ctx, db.UpdateUserParams{
		ID:               u.ID,
		PasswordHash:     u.PasswordHash,
		Name:             u.Name,
		Phone:            nullString(u.Phone),
		Status:           string(u.Status),
		Language:         string(u.Language),
		MarketingConsent: u.MarketingConsent,
		LastLoginAt:      nullTime(u),
		UpdatedAt:        u.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return identitydomain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f repositories.UserFilter, opts repositories.QueryOpts) ([]*models.User, int, error) {
	q := db.New(r.db.DB())
	rows, err := q.ListUsers(ctx, db.ListUsersParams{
		Status: string(f.Status),
		Role:   string(f.Role),
		Limit:  int32(opts.Limit),
		Offset: int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	total, err := q.CountUsers(ctx, string(f.Status), string(f.Role))
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users := make([]*models.User, len(rows))
	for i, row := range rows {
		users[i] = rowToUser(row)
	}
	return users, int(total), nil
}

func (r *UserRepository) Growth(ctx context.Context, from, to time.Time) (int, int, error) {
	active, joined, err := db.New(r.db.DB()).UserGrowth(ctx, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("query user growth: %w", err)
	}
	return int(active), int(joined), nil
}

func rowToUser(row db.IdentityUser) *models.User {
	u := &models.User{
		ID:               row.ID,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		Name:             row.Name,
		Phone:            row.Phone.String,
		Role:             models.Role(row.Role),
		Status:           models.Status(row.Status),
		Language:         models.Language(row.Language),
		MarketingConsent: row.MarketingConsent,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.LastLoginAt.Valid {
		t := row.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(u *models.User) sql.NullTime {
	if u.LastLoginAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *u.LastLoginAt, Valid: true}
}
