package errors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification surfaced to API clients.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindRateLimit     Kind = "rate_limit"
	KindConfiguration Kind = "configuration"
	KindInternal      Kind = "internal"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrDeviceBanned   = errors.New("device is banned")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrWeakPepper     = errors.New("hash pepper is missing or too short")
	ErrMissingSecret  = errors.New("jwt secret is missing")
	ErrInvalidPayload = errors.New("invalid request payload")
)

// AppError carries a kind plus a human-readable detail across layer
// boundaries. Expected outcomes (validation, conflict, not found,
// rate limit, authorization) travel as AppError; everything else is a
// plain wrapped error treated as internal at the delivery edge.
type AppError struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// FieldValidation reports a validation failure attributable to a single
// request field, e.g. a malformed license plate.
func FieldValidation(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Authorization(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func RateLimit(message string) *AppError {
	return &AppError{Kind: KindRateLimit, Message: message}
}

func Configuration(message string, err error) *AppError {
	return &AppError{Kind: KindConfiguration, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindInternal if err is not an
// AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
