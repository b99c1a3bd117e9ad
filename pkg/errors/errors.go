// Package errors defines custom error types and error handling utilities for the app authentication service.
// Every error carries a machine-readable code, an HTTP status and a category so callers can tell
// "authentication failed" apart from "service unavailable" without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/appauth/pkg/constants"
)

// Category groups error codes by how a caller is expected to react.
type Category string

const (
	// CategoryConfig covers key, keystore and truststore problems. Fatal to the triggering operation.
	CategoryConfig Category = "config"
	// CategoryVerification covers rejected assertions. The caller should answer "authentication failed".
	CategoryVerification Category = "verification"
	// CategoryTransport covers network failures talking to a pod. The caller may retry.
	CategoryTransport Category = "transport"
	// CategoryRequest covers bad input from the caller (unknown pod, missing fields).
	CategoryRequest Category = "request"
	// CategoryInternal covers everything else.
	CategoryInternal Category = "internal"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Category returns the reaction class of the error
	Category() Category

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	category    Category
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface. The cause is appended so wrapped
// parser messages stay visible in logs.
func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode { return e.code }
func (e *baseError) HTTPStatus() int           { return e.httpStatus }
func (e *baseError) Description() string       { return e.description }
func (e *baseError) Category() Category        { return e.category }
func (e *baseError) Unwrap() error             { return e.cause }

// Is reports whether target carries the same code, so sentinels work with errors.Is.
func (e *baseError) Is(target error) bool {
	var other AppError
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code() == e.code
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, category Category, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		category:    category,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Sentinels for errors.Is
// ================================================================================

var (
	ErrCodeInvalidKeyFormat      = NewError(constants.ErrCodeInvalidKeyFormat, http.StatusInternalServerError, CategoryConfig, "invalid key format", "")
	ErrCodeInvalidCertificate    = NewError(constants.ErrCodeInvalidCertificate, http.StatusInternalServerError, CategoryConfig, "invalid certificate", "")
	ErrCodeKeystoreLoad          = NewError(constants.ErrCodeKeystoreLoad, http.StatusInternalServerError, CategoryConfig, "keystore load error", "")
	ErrCodeTruststoreLoad        = NewError(constants.ErrCodeTruststoreLoad, http.StatusInternalServerError, CategoryConfig, "truststore load error", "")
	ErrCodeInternalConfig        = NewError(constants.ErrCodeInternalConfig, http.StatusInternalServerError, CategoryConfig, "internal configuration error", "")
	ErrCodeKeyLoad               = NewError(constants.ErrCodeKeyLoad, http.StatusInternalServerError, CategoryConfig, "key load error", "")
	ErrCodeUnknownTenant         = NewError(constants.ErrCodeUnknownTenant, http.StatusNotFound, CategoryRequest, "unknown pod", "")
	ErrCodeUnsignedAssertion     = NewError(constants.ErrCodeUnsignedAssertion, http.StatusUnauthorized, CategoryVerification, "assertion is not signed", "")
	ErrCodeCertificateParse      = NewError(constants.ErrCodeCertificateParse, http.StatusUnauthorized, CategoryVerification, "pod certificate could not be parsed", "")
	ErrCodeSignatureVerification = NewError(constants.ErrCodeSignatureVerification, http.StatusUnauthorized, CategoryVerification, "assertion signature verification failed", "")
	ErrCodeAlgorithmMismatch     = NewError(constants.ErrCodeAlgorithmMismatch, http.StatusUnauthorized, CategoryVerification, "assertion algorithm mismatch", "")
	ErrCodeMalformedClaims       = NewError(constants.ErrCodeMalformedClaims, http.StatusUnauthorized, CategoryVerification, "assertion claims are malformed", "")
	ErrCodeTransport             = NewError(constants.ErrCodeTransport, http.StatusBadGateway, CategoryTransport, "pod request failed", "")
	ErrCodeUserNotFound          = NewError(constants.ErrCodeUserNotFound, http.StatusNotFound, CategoryRequest, "user not found", "")
)

// ================================================================================
// Key Material & Configuration Errors
// ================================================================================

// ErrInvalidKeyFormat creates an invalid_key_format error
func ErrInvalidKeyFormat(reason string) AppError {
	return NewError(
		constants.ErrCodeInvalidKeyFormat,
		http.StatusInternalServerError,
		CategoryConfig,
		"The supplied key is not a supported PEM encoded RSA key.",
		fmt.Sprintf("invalid key format: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrInvalidCertificate creates an invalid_certificate error
func ErrInvalidCertificate(reason string) AppError {
	return NewError(
		constants.ErrCodeInvalidCertificate,
		http.StatusInternalServerError,
		CategoryConfig,
		"The supplied text is not a well-formed X.509 certificate.",
		fmt.Sprintf("invalid certificate: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrKeystoreLoad creates a keystore_load_error. The message names the file and never the password.
func ErrKeystoreLoad(filename string, reason string) AppError {
	return NewError(
		constants.ErrCodeKeystoreLoad,
		http.StatusInternalServerError,
		CategoryConfig,
		"The client identity keystore could not be loaded.",
		fmt.Sprintf("couldn't load keystore from file %s: %s", filename, reason),
	).WithMetadata("file", filename)
}

// ErrTruststoreLoad creates a truststore_load_error
func ErrTruststoreLoad(filename string, reason string) AppError {
	return NewError(
		constants.ErrCodeTruststoreLoad,
		http.StatusInternalServerError,
		CategoryConfig,
		"The trust store could not be loaded.",
		fmt.Sprintf("couldn't load truststore from file %s: %s", filename, reason),
	).WithMetadata("file", filename)
}

// ErrInternalConfig creates an internal_config_error
func ErrInternalConfig(reason string) AppError {
	return NewError(
		constants.ErrCodeInternalConfig,
		http.StatusInternalServerError,
		CategoryConfig,
		"The TLS context could not be assembled from the configured stores.",
		fmt.Sprintf("internal configuration error: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrKeyLoad creates a key_load_error for the app's own signing key
func ErrKeyLoad(source string, reason string) AppError {
	return NewError(
		constants.ErrCodeKeyLoad,
		http.StatusInternalServerError,
		CategoryConfig,
		"The application signing key could not be loaded.",
		fmt.Sprintf("error loading private key from %s: %s", source, reason),
	).WithMetadata("source", source)
}

// ================================================================================
// Pod Directory & Transport Errors
// ================================================================================

// ErrUnknownTenant creates an unknown_tenant error
func ErrUnknownTenant(podID string) AppError {
	return NewError(
		constants.ErrCodeUnknownTenant,
		http.StatusNotFound,
		CategoryRequest,
		"No pod information is registered for this pod. It should have been populated by the pod directory webhook when the app was enabled.",
		fmt.Sprintf("missing pod info for pod with ID '%s'", podID),
	).WithMetadata("pod_id", podID)
}

// ErrTransport creates a transport_error for a failed pod call
func ErrTransport(operation string, reason string) AppError {
	return NewError(
		constants.ErrCodeTransport,
		http.StatusBadGateway,
		CategoryTransport,
		"The request to the pod failed.",
		fmt.Sprintf("pod %s failed: %s", operation, reason),
	).WithMetadata("operation", operation)
}

// ================================================================================
// Assertion Verification Errors
// ================================================================================

// ErrUnsignedAssertion creates an unsigned_assertion error
func ErrUnsignedAssertion() AppError {
	return NewError(
		constants.ErrCodeUnsignedAssertion,
		http.StatusUnauthorized,
		CategoryVerification,
		"The assertion carries no signature.",
		"JWT is not signed",
	)
}

// ErrCertificateParse creates a certificate_parse_error
func ErrCertificateParse(podID string) AppError {
	return NewError(
		constants.ErrCodeCertificateParse,
		http.StatusUnauthorized,
		CategoryVerification,
		"The pod signing certificate could not be parsed.",
		fmt.Sprintf("couldn't parse signing certificate from pod %s", podID),
	).WithMetadata("pod_id", podID)
}

// ErrSignatureVerification creates a signature_verification_error
func ErrSignatureVerification(reason string) AppError {
	return NewError(
		constants.ErrCodeSignatureVerification,
		http.StatusUnauthorized,
		CategoryVerification,
		"The assertion signature or registered claims are invalid.",
		fmt.Sprintf("assertion verification failed: %s", reason),
	)
}

// ErrAlgorithmMismatch creates an algorithm_mismatch error
func ErrAlgorithmMismatch(expected string, actual string) AppError {
	return NewError(
		constants.ErrCodeAlgorithmMismatch,
		http.StatusUnauthorized,
		CategoryVerification,
		"The assertion was signed with an unexpected algorithm.",
		fmt.Sprintf("invalid JWT algorithm: expected '%s', got '%s'", expected, actual),
	).WithMetadata("expected", expected).
		WithMetadata("actual", actual)
}

// ErrMalformedClaims creates a malformed_claims error
func ErrMalformedClaims(reason string) AppError {
	return NewError(
		constants.ErrCodeMalformedClaims,
		http.StatusUnauthorized,
		CategoryVerification,
		"The assertion does not carry the expected user claims.",
		fmt.Sprintf("malformed claims: %s", reason),
	)
}

// ================================================================================
// Request Errors
// ================================================================================

// ErrInvalidRequest creates an invalid_request error
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		CategoryRequest,
		"The request is missing a required parameter or is otherwise malformed.",
		message,
	)
}

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) AppError {
	return NewError(
		constants.ErrCodeUnauthorized,
		http.StatusUnauthorized,
		CategoryRequest,
		"The request could not be authenticated.",
		message,
	)
}

// ErrUserNotFound creates a user_not_found error
func ErrUserNotFound(username string) AppError {
	return NewError(
		constants.ErrCodeUserNotFound,
		http.StatusNotFound,
		CategoryRequest,
		"No local user matches the authenticated identity.",
		fmt.Sprintf("user not found: %s", username),
	).WithMetadata("username", username)
}

// ErrServerError creates a server_error error
func ErrServerError(message string) AppError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		CategoryInternal,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Inspection Utilities
// ================================================================================

// AsAppError returns the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is is a passthrough to the standard library so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// CategoryOf returns the category of err, or CategoryInternal for foreign errors.
func CategoryOf(err error) Category {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Category()
	}
	return CategoryInternal
}

// IsVerificationError reports whether err means "authentication failed".
func IsVerificationError(err error) bool {
	return CategoryOf(err) == CategoryVerification
}

// IsTransportError reports whether err means "pod unavailable".
func IsTransportError(err error) bool {
	return CategoryOf(err) == CategoryTransport
}

// IsConfigError reports whether err was caused by key or store configuration.
func IsConfigError(err error) bool {
	return CategoryOf(err) == CategoryConfig
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse and its HTTP status.
// Foreign errors collapse to a generic server error so internals do not leak.
func ToErrorResponse(err error) (int, *ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus(), &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: appErr.Description(),
			Metadata:         appErr.Metadata(),
		}
	}
	return http.StatusInternalServerError, &ErrorResponse{
		Error:            string(constants.ErrCodeServerError),
		ErrorDescription: "An unexpected error occurred",
	}
}
