package domain

import "errors"

// Sentinel errors for the identity domain. Use errors.Is() to check these.
var (
	// ErrEmailTaken indicates another account already uses the email.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("email or password is incorrect")

	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountInactive  = errors.New("account is inactive")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRefreshToken covers invalid, expired, revoked and rotated refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUserNotActive rejects token refresh for accounts that are no longer ACTIVE.
	ErrUserNotActive = errors.New("account is not active")

	// ErrInvalidUser indicates user fields violate domain constraints.
	ErrInvalidUser = errors.New("invalid user")
)
