package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/appauth/pkg/constants"
)

// AuditEvent represents a single audit trail event.
type AuditEvent struct {
	EventID    string                     `json:"event_id"`
	EventType  constants.AuditEventType   `json:"event_type"`
	Result     constants.AuditEventResult `json:"result"`
	PodID      string                     `json:"pod_id,omitempty"`
	Actor      string                     `json:"actor,omitempty"` // pod user, app id or "webhook"
	ResultCode constants.ErrorCode        `json:"result_code,omitempty"`
	Message    string                     `json:"message,omitempty"`
	TraceID    string                     `json:"trace_id,omitempty"`
	RequestID  string                     `json:"request_id,omitempty"`
	Metadata   map[string]string          `json:"metadata,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// NewAuditEvent creates a new audit event stamped with the current time.
func NewAuditEvent(eventType constants.AuditEventType, result constants.AuditEventResult, podID string) AuditEvent {
	return AuditEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Result:    result,
		PodID:     podID,
		Timestamp: time.Now().UTC(),
	}
}

// WithActor sets the actor of the event.
func (e AuditEvent) WithActor(actor string) AuditEvent {
	e.Actor = actor
	return e
}

// WithFailure records the error code and message of a failed operation.
func (e AuditEvent) WithFailure(code constants.ErrorCode, message string) AuditEvent {
	e.ResultCode = code
	e.Message = message
	return e
}

// WithMetadata adds a key/value pair to the event.
func (e AuditEvent) WithMetadata(key, value string) AuditEvent {
	m := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		m[k] = v
	}
	m[key] = value
	e.Metadata = m
	return e
}
