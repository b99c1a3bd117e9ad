package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/turtacn/appauth/pkg/errors"
)

// Validator holds the singleton instance of the validator.
var defaultValidator = validator.New()

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
)

// ValidateStruct validates a struct using the default validator.
// It returns an invalid_request AppError listing each failing field.
func ValidateStruct(s interface{}) errors.AppError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	details := make([]string, 0, len(validationErrors))
	appErr := errors.ErrInvalidRequest("")
	for _, fe := range validationErrors {
		field := toSnakeCase(fe.Field())
		msg := formatValidationError(fe)
		appErr.WithMetadata(field, msg)
		details = append(details, field+" "+msg)
	}
	sort.Strings(details)
	return errors.ErrInvalidRequest(strings.Join(details, "; ")).
		WithMetadata("fields", appErr.Metadata())
}

// formatValidationError creates a user-friendly error message for a validation error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be a host:port pair"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' tag", fe.Tag())
	}
}

// toSnakeCase converts a string from CamelCase to snake_case.
func toSnakeCase(str string) string {
	snake := matchFirstCap.ReplaceAllString(str, "${1}_${2}")
	snake = matchAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}

// ValidateNotEmpty checks if a string is not empty.
func ValidateNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
