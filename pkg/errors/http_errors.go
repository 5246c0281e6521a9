package errors

import (
	stderrors "errors"
	"fmt"
)

// FromError converts a standard error to an AppError
// If the error is already an AppError (anywhere in the chain), it is returned as-is
// Otherwise, it is wrapped as an internal error
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(
		"INTERNAL_ERROR",
		fmt.Sprintf("An unexpected error occurred: %s", err.Error()),
		err,
	)
}

// KindOf returns the category of err, KindInternal for foreign errors and
// the empty Kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// GetErrorCode extracts the error code from an AppError, returns "UNKNOWN_ERROR" if not an AppError
func GetErrorCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}
