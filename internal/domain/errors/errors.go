package errors

import (
	"errors"
	"net/http"
	"time"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")

	// Gateway taxonomy. ErrInvalidCredential deliberately covers both an
	// unknown prefix and a digest mismatch so callers cannot enumerate
	// issued keys.
	ErrMissingCredential  = errors.New("missing credential")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrCredentialInactive = errors.New("credential inactive")
	ErrCredentialExpired  = errors.New("credential expired")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrRateLimited        = errors.New("rate limited")
	ErrBackingUnavailable = errors.New("backing service unavailable")
)

// AppError represents an application error with its HTTP mapping.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
	// RetryAfter, in seconds, is set only for retryable rejections.
	RetryAfter int   `json:"retryAfter,omitempty"`
	Err        error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}

// Gateway rejection constructors. Messages are stable and free of internal
// identifiers; retry-after values feed client backoff.

func MissingCredential() *AppError {
	return NewAppError(http.StatusUnauthorized, "MISSING_CREDENTIAL", "api key required", ErrMissingCredential)
}

func InvalidCredential() *AppError {
	return NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIAL", "invalid api key", ErrInvalidCredential)
}

func CredentialInactive() *AppError {
	return NewAppError(http.StatusForbidden, "CREDENTIAL_INACTIVE", "api key has been deactivated", ErrCredentialInactive)
}

func CredentialExpired() *AppError {
	return NewAppError(http.StatusForbidden, "CREDENTIAL_EXPIRED", "api key has expired", ErrCredentialExpired)
}

func QuotaExceeded(retryAfter time.Duration) *AppError {
	e := NewAppError(http.StatusTooManyRequests, "QUOTA_EXCEEDED", "prediction quota exceeded", ErrQuotaExceeded)
	if retryAfter > 0 {
		e.RetryAfter = ceilSeconds(retryAfter)
	}
	return e
}

func RateLimited(retryAfter time.Duration) *AppError {
	e := NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", ErrRateLimited)
	if retryAfter > 0 {
		e.RetryAfter = ceilSeconds(retryAfter)
	}
	return e
}

func BackingUnavailable(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "BACKING_UNAVAILABLE", "service temporarily unavailable", errors.Join(ErrBackingUnavailable, err))
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
