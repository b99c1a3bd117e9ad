package audit

import (
	"context"
	"fmt"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

// LogAuditService writes audit events to the application log.
type LogAuditService struct {
	logger logger.Logger
}

var _ service.AuditService = (*LogAuditService)(nil)

func NewLogAuditService(log logger.Logger) *LogAuditService {
	return &LogAuditService{logger: log.WithComponent("audit")}
}

func (s *LogAuditService) LogEvent(ctx context.Context, event models.AuditEvent) error {
	fields := logger.Fields{
		"event_id":   event.EventID,
		"event_type": string(event.EventType),
		"result":     string(event.Result),
		"event_time": event.Timestamp,
	}
	if event.PodID != "" {
		fields["pod_id"] = event.PodID
	}
	if event.Actor != "" {
		fields["actor"] = event.Actor
	}
	if event.ResultCode != "" {
		fields["result_code"] = string(event.ResultCode)
		fields["reason"] = event.Message
	}
	for k, v := range event.Metadata {
		fields["meta_"+k] = v
	}
	s.logger.Info(ctx, "audit event", fields)
	return nil
}

// NewAuditService builds the audit sink selected by cfg.Backend. The returned close
// function releases the sink's resources and is never nil.
func NewAuditService(cfg *config.AuditConfig, log logger.Logger) (service.AuditService, func() error, error) {
	switch cfg.Backend {
	case "", constants.BackendLog:
		return NewLogAuditService(log), func() error { return nil }, nil
	case constants.BackendKafka:
		p := NewKafkaProducer(cfg.Kafka, cfg.SigningKey, log)
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported audit backend %q", cfg.Backend)
	}
}
