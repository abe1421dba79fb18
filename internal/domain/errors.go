package domain

import (
	"errors"
	"fmt"
)

// Authentication errors. Messages are deliberately uniform so callers cannot
// tell an unknown email from a wrong password.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

// Book errors
var (
	ErrNotFound   = errors.New("book not found")
	ErrValidation = errors.New("validation failed")
)

// ErrStorageUnavailable wraps failures of the underlying store.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
