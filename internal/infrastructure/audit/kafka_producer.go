// Package audit ships audit events to the structured log or to a Kafka topic.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is a Kafka-backed implementation of the AuditService.
type KafkaProducer struct {
	writer     messageWriter
	signingKey string
	logger     logger.Logger
}

var _ service.AuditService = (*KafkaProducer)(nil)

// NewKafkaProducer creates a new KafkaProducer.
func NewKafkaProducer(cfg config.KafkaConfig, signingKey config.Secret, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaProducer(writer, signingKey.Value(), log)
}

func newKafkaProducer(writer messageWriter, signingKey string, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer:     writer,
		signingKey: signingKey,
		logger:     log.WithComponent("KafkaProducer"),
	}
}

// LogEvent sends an audit event to the Kafka topic keyed by pod ID.
func (p *KafkaProducer) LogEvent(ctx context.Context, event models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal audit event", err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.PodID),
		Value: payload,
		Time:  event.Timestamp,
	}
	if p.signingKey != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key:   SignatureHeader,
			Value: []byte(SignAuditPayload(payload, p.signingKey)),
		})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{"event_type": string(event.EventType)})
		return err
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
