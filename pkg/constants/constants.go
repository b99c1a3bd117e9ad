// Package constants defines system-wide constants for the extension app authentication service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName is used for tracing, metrics namespaces and log fields
	ServiceName = "appauth"

	// MetricsNamespace prefixes every Prometheus metric exported by the service
	MetricsNamespace = "appauth"
)

// ================================================================================
// Pod Endpoint Paths
// ================================================================================

const (
	// PodCertificatePath returns the pod's current JWT signing certificate
	PodCertificatePath = "/sessionauth/v1/app/pod/certificate"

	// PodAuthenticatePath performs the extension app token exchange
	PodAuthenticatePath = "/sessionauth/v1/authenticate/extensionApp"
)

// ================================================================================
// JWT Algorithm Constants
// ================================================================================

// JWTAlgorithm represents the signing algorithm for JWT tokens
type JWTAlgorithm string

const (
	// AlgorithmRS256 represents RSA signature with SHA-256
	AlgorithmRS256 JWTAlgorithm = "RS256"

	// AlgorithmRS384 represents RSA signature with SHA-384
	AlgorithmRS384 JWTAlgorithm = "RS384"

	// AlgorithmRS512 represents RSA signature with SHA-512
	AlgorithmRS512 JWTAlgorithm = "RS512"
)

// DefaultPodJWTAlgorithm is the only algorithm accepted on pod-issued user JWTs unless configured otherwise
const DefaultPodJWTAlgorithm = AlgorithmRS512

// ================================================================================
// Token Lifetime & Cache Constants
// ================================================================================

const (
	// AppAssertionTTL is the lifetime of the JWT the app signs to prove its identity to a pod
	AppAssertionTTL = 5 * time.Second

	// TokenCacheDefaultTTL bounds how long an app/symphony token pair stays valid
	TokenCacheDefaultTTL = 5 * time.Minute

	// TokenCacheDefaultMaxSize bounds the number of pending token pairs
	TokenCacheDefaultMaxSize = 1000

	// VaultKeyCacheTTL is how long a private key PEM read from Vault is reused
	VaultKeyCacheTTL = 1 * time.Minute
)

// ================================================================================
// Backend Names
// ================================================================================

const (
	// BackendMemory selects the in-process implementation
	BackendMemory = "memory"

	// BackendRedis selects the Redis implementation
	BackendRedis = "redis"

	// BackendLog selects the structured-log audit sink
	BackendLog = "log"

	// BackendKafka selects the Kafka audit sink
	BackendKafka = "kafka"
)

// ================================================================================
// Trust Store Formats
// ================================================================================

const (
	// TrustStoreFormatPEM is a concatenation of PEM CERTIFICATE blocks
	TrustStoreFormatPEM = "pem"

	// TrustStoreFormatPKCS12 is a PKCS#12 trust store holding certificates only
	TrustStoreFormatPKCS12 = "pkcs12"
)

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	ErrCodeInvalidKeyFormat      ErrorCode = "invalid_key_format"
	ErrCodeInvalidCertificate    ErrorCode = "invalid_certificate"
	ErrCodeKeystoreLoad          ErrorCode = "keystore_load_error"
	ErrCodeTruststoreLoad        ErrorCode = "truststore_load_error"
	ErrCodeInternalConfig        ErrorCode = "internal_config_error"
	ErrCodeKeyLoad               ErrorCode = "key_load_error"
	ErrCodeUnknownTenant         ErrorCode = "unknown_tenant"
	ErrCodeUnsignedAssertion     ErrorCode = "unsigned_assertion"
	ErrCodeCertificateParse      ErrorCode = "certificate_parse_error"
	ErrCodeSignatureVerification ErrorCode = "signature_verification_error"
	ErrCodeAlgorithmMismatch     ErrorCode = "algorithm_mismatch"
	ErrCodeMalformedClaims       ErrorCode = "malformed_claims"
	ErrCodeTransport             ErrorCode = "transport_error"
	ErrCodeInvalidRequest        ErrorCode = "invalid_request"
	ErrCodeUnauthorized          ErrorCode = "unauthorized"
	ErrCodeUserNotFound          ErrorCode = "user_not_found"
	ErrCodeServerError           ErrorCode = "server_error"
)

// ================================================================================
// Audit Event Constants
// ================================================================================

// AuditEventType identifies what happened in an audit record
type AuditEventType string

const (
	AuditEventHandshakeInitiated AuditEventType = "handshake.initiated"
	AuditEventHandshakeFailed    AuditEventType = "handshake.failed"
	AuditEventTokensValidated    AuditEventType = "tokens.validated"
	AuditEventTokensRejected     AuditEventType = "tokens.rejected"
	AuditEventLoginSucceeded     AuditEventType = "login.succeeded"
	AuditEventLoginFailed        AuditEventType = "login.failed"
	AuditEventPodRegistered      AuditEventType = "pod.registered"
)

// AuditEventResult is the coarse outcome of an audited operation
type AuditEventResult string

const (
	AuditResultSuccess AuditEventResult = "success"
	AuditResultFailure AuditEventResult = "failure"
)

// ================================================================================
// Logging Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context & Header Constants
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyPodID is the key for the pod (tenant) ID in context
	ContextKeyPodID ContextKey = "pod_id"

	// ContextKeyLogger carries a request-scoped logger
	ContextKeyLogger ContextKey = "logger"
)

const (
	// HeaderRequestID carries the request correlation ID
	HeaderRequestID = "X-Request-ID"

	// HeaderAPIKey authenticates the pod directory webhook
	HeaderAPIKey = "API-Key"
)
