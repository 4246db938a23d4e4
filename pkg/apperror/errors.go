package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Grinder precondition failures. None of these are retryable as-is; the
// failing operation leaves every piece of state untouched.
var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrCooldownActive    = errors.New("cooldown active")
	ErrSelfBoost         = errors.New("cannot self-boost")
	ErrCheckInTooSoon    = errors.New("already checked in this period")
	ErrInvalidAddress    = errors.New("invalid address")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrSelfBoost):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, ErrCooldownActive),
		errors.Is(err, ErrCheckInTooSoon),
		errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
