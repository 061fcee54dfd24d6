package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Language is the account's preferred UI language.
type Language string

const (
	LanguageKorean  Language = "ko-KR"
	LanguageEnglish Language = "en-US"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores bytes past 72
	maxNameLength     = 100
)

// passwordCost is a var so tests can lower it.
var passwordCost = 12

// User is the account aggregate. PasswordHash never leaves the identity context.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	Name             string
	Phone            string
	Role             Role
	Status           Status
	Language         Language
	MarketingConsent bool
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUserParams carries the registration input.
type NewUserParams struct {
	Email            string
	Password         string
	Name             string
	Phone            string
	Role             Role
	Language         Language
	MarketingConsent bool
}

// NewUser builds an ACTIVE account with a hashed password. Role defaults to
// BUYER and language to Korean. ADMIN accounts cannot be created this way.
func NewUser(p NewUserParams, now time.Time) (*User, error) {
	email := NormalizeEmail(p.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("email %q is not valid", p.Email)
	}

	role := p.Role
	if role == "" {
		role = RoleBuyer
	}
	if role != RoleBuyer && role != RoleSeller {
		return nil, fmt.Errorf("role %q cannot be self-assigned", role)
	}

	lang := p.Language
	if lang == "" {
		lang = LanguageKorean
	}
	if !lang.Valid() {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}

	name := strings.TrimSpace(p.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	now = now.UTC()
	u := &User{
		ID:               uuid.New(),
		Email:            email,
		Name:             name,
		Phone:            strings.TrimSpace(p.Phone),
		Role:             role,
		Status:           StatusActive,
		Language:         lang,
		MarketingConsent: p.MarketingConsent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.SetPassword(p.Password); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SetPassword validates and hashes password.
func (u *User) SetPassword(password string) error {
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("password must be %d-%d bytes", minPasswordLength, maxPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ProfileUpdate is a partial profile change; nil fields are left alone.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Language *Language
}

// ApplyProfile applies upd and bumps UpdatedAt.
func (u *User) ApplyProfile(upd ProfileUpdate, now time.Time) error {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := validateName(name); err != nil {
			return err
		}
		u.Name = name
	}
	if upd.Phone != nil {
		u.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Language != nil {
		if !upd.Language.Valid() {
			return fmt.Errorf("unsupported language %q", *upd.Language)
		}
		u.Language = *upd.Language
	}
	u.UpdatedAt = now.UTC()
	return nil
}

// RecordLogin stamps the last successful login.
func (u *User) RecordLogin(now time.Time) {
	t := now.UTC()
	u.LastLoginAt = &t
	u.UpdatedAt = t
}

// SetStatus changes the account status.
func (u *User) SetStatus(s Status, now time.Time) error {
	if !s.Valid() {
		return fmt.Errorf("unknown status %q", s)
	}
	u.Status = s
	u.UpdatedAt = now.UTC()
	return nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

func (l Language) Valid() bool {
	return l == LanguageKorean || l == LanguageEnglish
}

func validateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	return nil
}
