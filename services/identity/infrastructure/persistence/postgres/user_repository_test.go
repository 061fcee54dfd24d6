package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spicyjump/storefront/pkg/database"
	identitydomain "github.com/spicyjump/storefront/services/identity/domain"
	"github.com/spicyjump/storefront/services/identity/domain/models"
	"github.com/spicyjump/storefront/services/identity/domain/repositories"
)

var userCols = []string{
	"id", "email", "password_hash", "name", "phone", "role", "status", "language",
	"marketing_consent", "last_login_at", "created_at", "updated_at",
}

func newRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewUserRepository(database.FromDB(sqlDB)), mock
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("INSERT INTO identity.users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &models.User{
		ID: uuid.New(), Email: "kim@spicyjump.io", Role: models.RoleBuyer,
		Status: models.StatusActive, Language: models.LanguageKorean, CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, identitydomain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	lastLogin := created.Add(time.Hour)

	mock.ExpectQuery("SELECT .+ FROM identity.users WHERE email = \\$1").
		WithArgs("kim@spicyjump.io").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(
			id.String(), "kim@spicyjump.io", "$2a$hash", "Kim", nil, "SELLER", "ACTIVE", "en-US",
			true, lastLogin, created, created,
		))

	u, err := repo.GetByEmail(context.Background(), "kim@spicyjump.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != id || u.Role != models.RoleSeller || u.Language != models.LanguageEnglish {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Phone != "" || u.LastLoginAt == nil || !u.LastLoginAt.Equal(lastLogin) {
		t.Fatalf("nullable columns not mapped: phone=%q last_login=%v", u.Phone, u.LastLoginAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT .+ FROM identity.users WHERE id = \\$1").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, identitydomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdate_NoRows(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("UPDATE identity.users").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.User{ID: uuid.New(), UpdatedAt: time.Now()})
	if !errors.Is(err, identitydomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM identity.users").
		WithArgs("SUSPENDED", "", int32(20), int32(40)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(uuid.NewString(), "a@x.io", "h", "A", "010-1234-5678", "BUYER", "SUSPENDED", "ko-KR", false, nil, now, now))
	mock.ExpectQuery("SELECT count").
		WithArgs("SUSPENDED", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	users, total, err := repo.List(context.Background(),
		repositories.UserFilter{Status: models.StatusSuspended},
		repositories.QueryOpts{Limit: 20, Offset: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 41 || len(users) != 1 || users[0].Phone != "010-1234-5678" {
		t.Fatalf("unexpected result: total=%d users=%+v", total, users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGrowth(t *testing.T) {
	repo, mock := newRepo(t)
	to := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -30)

	mock.ExpectQuery("FROM identity.users").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"active", "joined"}).AddRow(40, 6))

	active, joined, err := repo.Growth(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Growth: %v", err)
	}
	if active != 40 || joined != 6 {
		t.Fatalf("Growth = %d, %d", active, joined)
	}
}
