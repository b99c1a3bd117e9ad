// Package logger defines the structured logging contract shared by every component of the
// app authentication service. The production implementation lives in the monitoring package
// and is backed by zap.
package logger

import (
	"context"
	"strings"
)

// Fields is a set of structured key-value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger tagged with a component name
	WithComponent(component string) Logger

	// ForContext returns the request-scoped logger stored in ctx, or the receiver.
	ForContext(ctx context.Context) Logger
}

var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"authorization",
	"private_key",
}

// IsSensitiveKey reports whether a field key names a credential that must be masked.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitiveKey := range sensitiveKeys {
		if strings.Contains(keyLower, sensitiveKey) {
			return true
		}
	}
	return false
}

// MaskString partially masks a string value, keeping the first and last four characters of long values.
func MaskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// Sanitize returns value with credentials masked when key is sensitive.
func Sanitize(key string, value interface{}) interface{} {
	if !IsSensitiveKey(key) {
		return value
	}
	if str, ok := value.(string); ok && len(str) > 0 {
		return MaskString(str)
	}
	return "***REDACTED***"
}
