package service

import (
	"context"

	"github.com/turtacn/appauth/internal/domain/models"
	domainService "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

// auditRecorder stamps events with request correlation data before handing them to the sink.
// Sink failures are logged and never fail the audited operation.
type auditRecorder struct {
	sink   domainService.AuditService
	tracer *monitoring.TracingManager
	logger logger.Logger
}

func (r auditRecorder) record(ctx context.Context, event models.AuditEvent) {
	if r.sink == nil {
		return
	}
	event.TraceID = r.tracer.GetTraceID(ctx)
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		event.RequestID = requestID
	}
	if err := r.sink.LogEvent(ctx, event); err != nil {
		r.logger.Warn(ctx, "Failed to record audit event", logger.Fields{
			"event_type": string(event.EventType),
			"error":      err.Error(),
		})
	}
}

func (r auditRecorder) failure(ctx context.Context, eventType constants.AuditEventType, podID string, err error) {
	event := models.NewAuditEvent(eventType, constants.AuditResultFailure, podID)
	if appErr, ok := errors.AsAppError(err); ok {
		event = event.WithFailure(appErr.Code(), appErr.Error())
	} else {
		event = event.WithFailure(constants.ErrCodeServerError, err.Error())
	}
	r.record(ctx, event)
}

// errorCode returns the code of an AppError or server_error for anything else.
func errorCode(err error) constants.ErrorCode {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Code()
	}
	return constants.ErrCodeServerError
}
