package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
)

// Kind is the category of an AppError. Callers branch on Kind rather than
// on messages.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindBackendUnavailable Kind = "BACKEND_UNAVAILABLE"
	KindValidationFailed   Kind = "VALIDATION_FAILED"
	KindSchemaMissing      Kind = "SCHEMA_MISSING"
	KindInternal           Kind = "INTERNAL"
)

// Category sentinels for use with errors.Is.
var (
	ErrNotFound           = &AppError{Kind: KindNotFound}
	ErrConflict           = &AppError{Kind: KindConflict}
	ErrBackendUnavailable = &AppError{Kind: KindBackendUnavailable}
	ErrValidationFailed   = &AppError{Kind: KindValidationFailed}
	ErrSchemaMissing      = &AppError{Kind: KindSchemaMissing}
)

// AppError represents an application error with a category, a machine code
// and the HTTP status an upstream layer should map it to.
type AppError struct {
	StatusCode int    `json:"-"`
	Kind       Kind   `json:"kind"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"-"`

	cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver or transport error.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on Code when the target carries one, otherwise on Kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(kind Kind, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusFor(kind),
		Kind:       kind,
		Code:       code,
		Message:    message,
	}
}

// NewNotFoundError creates a NOT_FOUND error, e.g. code "INFLUENCER_NOT_FOUND".
func NewNotFoundError(code string, message string) *AppError {
	return NewError(KindNotFound, code, message)
}

// NewConflictError creates a CONFLICT error
func NewConflictError(code string, message string) *AppError {
	return NewError(KindConflict, code, message)
}

// NewValidationError creates a VALIDATION_FAILED error
func NewValidationError(message string, details any) *AppError {
	return NewError(KindValidationFailed, string(KindValidationFailed), message).WithDetails(details)
}

// NewBackendUnavailableError wraps a transport or backend failure.
func NewBackendUnavailableError(code string, message string, cause error) *AppError {
	e := NewError(KindBackendUnavailable, code, message)
	e.cause = cause
	e.Stack = string(debug.Stack())
	return e
}

// NewSchemaMissingError reports tables that must be created by a migration
// before the data layer can run.
func NewSchemaMissingError(tables ...string) *AppError {
	return NewError(KindSchemaMissing, string(KindSchemaMissing),
		fmt.Sprintf("database schema is missing tables: %s; run the migrate command", strings.Join(tables, ", "))).
		WithDetails(map[string]any{"tables": tables})
}

// NewInternalError wraps an unexpected error
func NewInternalError(code string, message string, cause error) *AppError {
	e := NewError(KindInternal, code, message)
	e.cause = cause
	e.Stack = string(debug.Stack())
	return e
}

// Is checks if the target error is of type AppError
func Is(err error, target *AppError) bool {
	return stderrors.Is(err, target)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
