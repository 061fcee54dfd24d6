package domain

import "errors"

var (
	// ErrSelfStatusChange stops an admin from suspending or deactivating themself.
	ErrSelfStatusChange = errors.New("admins cannot change their own status")

	ErrInvalidDateRange = errors.New("invalid report date range")
)
