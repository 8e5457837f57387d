package store

import "errors"

var (
	// ErrUserNotFound indicates no user matched the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrUnsupportedDriver indicates DATABASE_DRIVER is not sqlite or postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
