package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, name, phone, role, status, language,
	marketing_consent, last_login_at, created_at, updated_at`

const insertUser = `-- name: InsertUser :exec
INSERT INTO identity.users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type InsertUserParams struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	Name             string
	Phone            sql.NullString
	Role             string
	Status           string
	Language         string
	MarketingConsent bool
	LastLoginAt      sql.NullTime
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) error {
	_, err := q.db.ExecContext(ctx, insertUser,
		arg.ID,
		arg.Email,
		arg.PasswordHash,
		arg.Name,
		arg.Phone,
		arg.Role,
		arg.Status,
		arg.Language,
		arg.MarketingConsent,
		arg.LastLoginAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM identity.users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (IdentityUser, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM identity.users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (IdentityUser, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUser = `-- name: UpdateUser :execrows
UPDATE identity.users
SET password_hash = $2, name = $3, phone = $4, status = $5, language = $6,
    marketing_consent = $7, last_login_at = $8, updated_at = $9
WHERE id = $1
`

type UpdateUserParams struct {
	ID               uuid.UUID
	PasswordHash     string
	Name             string
	Phone            sql.NullString
	Status           string
	Language         string
	MarketingConsent bool
	LastLoginAt      sql.NullTime
	UpdatedAt        time.Time
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUser,
		arg.ID,
		arg.PasswordHash,
		arg.Name,
		arg.Phone,
		arg.Status,
		arg.Language,
		arg.MarketingConsent,
		arg.LastLoginAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listUsers = `-- name: ListUsers :many
SELECT ` + userColumns + ` FROM identity.users
WHERE ($1::text = '' OR status = $1) AND ($2::text = '' OR role = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListUsersParams struct {
	Status string
	Role   string
	Limit  int32
	Offset int32
}

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]IdentityUser, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Status, arg.Role, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IdentityUser
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countUsers = `-- name: CountUsers :one
SELECT count(*) FROM identity.users
WHERE ($1::text = '' OR status = $1) AND ($2::text = '' OR role = $2)
`

func (q *Queries) CountUsers(ctx context.Context, status, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers, status, role).Scan(&count)
	return count, err
}

const userGrowth = `-- name: UserGrowth :one
SELECT count(*) FILTER (WHERE status = 'ACTIVE'),
       count(*) FILTER (WHERE created_at >= $1 AND created_at < $2)
FROM identity.users
`

func (q *Queries) UserGrowth(ctx context.Context, from, to time.Time) (active, joined int64, err error) {
	err = q.db.QueryRowContext(ctx, userGrowth, from, to).Scan(&active, &joined)
	return active, joined, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (IdentityUser, error) {
	var i IdentityUser
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Name,
		&i.Phone,
		&i.Role,
		&i.Status,
		&i.Language,
		&i.MarketingConsent,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
