// Package monitoring provides the zap logger, Prometheus metrics and OpenTelemetry tracing
// used by the app authentication service.
package monitoring

import (
	"time"

	"github.com/turtacn/appauth/internal/domain/service"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter wraps a concrete Prometheus Metrics object. A nil metrics value
// yields an adapter that records nothing.
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

func (a *MetricsAdapter) RecordHandshake(podID string, success bool, duration time.Duration) {
	a.metrics.RecordHandshake(podID, success, duration)
}

func (a *MetricsAdapter) RecordTokenValidation(valid bool) {
	a.metrics.RecordTokenValidation(valid)
}

func (a *MetricsAdapter) RecordAssertionVerification(podID, result string) {
	a.metrics.RecordAssertionVerification(podID, result)
}

func (a *MetricsAdapter) RecordPodRequest(operation string, statusCode int, duration time.Duration) {
	a.metrics.RecordPodRequest(operation, statusCode, duration)
}

func (a *MetricsAdapter) SetPodClients(count int) {
	a.metrics.SetPodClients(count)
}
