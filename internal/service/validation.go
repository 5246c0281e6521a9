package service

import (
	"errors"
	"reflect"
	"strings"

	apperrors "influencer-platform/backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and converts failures into a
// VALIDATION_FAILED error listing each field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: describe(fe)})
	}
	return apperrors.NewValidationError("invalid input", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func invalidField(field, message string) error {
	return apperrors.NewValidationError("invalid input", []FieldError{{Field: field, Error: message}})
}

// validateFilename accepts a plain file name: no directories. Dots inside a
// name are allowed.
func validateFilename(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return invalidField("filename", "is required")
	case strings.ContainsAny(name, `/\`):
		return invalidField("filename", "must not contain path separators")
	case name == "." || name == "..":
		return invalidField("filename", "must not be a directory reference")
	case strings.ContainsRune(name, 0):
		return invalidField("filename", "must not contain NUL bytes")
	}
	return nil
}
