package errors

import (
	"errors"
	"fmt"
)

// Common error types for the store admin client and dev backend
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrSessionEnded     = errors.New("session ended")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrRefreshFailed    = errors.New("token refresh failed")

	// Credential errors
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Store errors
	ErrUnsupportedDriver = errors.New("unsupported credential store driver")
	ErrStoreUnavailable  = errors.New("credential store unavailable")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
	ErrUnsupported    = errors.New("unsupported operation")
)

// New returns an error with the given text
func New(text string) error {
	return errors.New(text)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, ignoring nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
