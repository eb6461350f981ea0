// Package services holds the shop's use cases. Services take their stores
// through constructors and never touch package-level connections.
package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/sweetshop/app/repositories"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrNotificationFailed = errors.New("notification failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// storeError lifts a repository error into a service error kind.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repositories.ErrInsufficientStock):
		return fmt.Errorf("%s: %w", op, ErrInsufficientStock)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
