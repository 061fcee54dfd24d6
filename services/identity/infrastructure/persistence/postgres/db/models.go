package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type IdentityUser struct {
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
