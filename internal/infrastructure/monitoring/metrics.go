package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/appauth/pkg/constants"
)

// Metrics manages the Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HandshakeRequests      *prometheus.CounterVec
	HandshakeLatency       *prometheus.HistogramVec
	TokenValidations       *prometheus.CounterVec
	AssertionVerifications *prometheus.CounterVec
	PodRequests            *prometheus.CounterVec
	PodRequestLatency      *prometheus.HistogramVec
	PodClients             prometheus.Gauge
	HTTPRequests           *prometheus.CounterVec
	HTTPRequestLatency     *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	ns := constants.MetricsNamespace

	return &Metrics{
		HandshakeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "handshake_requests_total",
				Help:      "Total number of app authentication handshakes.",
			},
			[]string{"pod_id", "result"},
		),
		HandshakeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "handshake_latency_seconds",
				Help:      "Latency of app authentication handshakes.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pod_id"},
		),
		TokenValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "token_validations_total",
				Help:      "Total number of app/symphony token pair validations.",
			},
			[]string{"result"},
		),
		AssertionVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "assertion_verifications_total",
				Help:      "Total number of pod user JWT verifications by outcome.",
			},
			[]string{"pod_id", "result"},
		),
		PodRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "pod_requests_total",
				Help:      "Total number of outbound requests to pods.",
			},
			[]string{"operation", "status"},
		),
		PodRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "pod_request_latency_seconds",
				Help:      "Latency of outbound requests to pods.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		PodClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "pod_clients",
				Help:      "Number of cached pod clients.",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "Total number of inbound HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_latency_seconds",
				Help:      "Latency of inbound HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// RecordHandshake records the outcome and latency of a handshake.
func (m *Metrics) RecordHandshake(podID string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.HandshakeRequests.WithLabelValues(podID, resultLabel(success)).Inc()
	m.HandshakeLatency.WithLabelValues(podID).Observe(duration.Seconds())
}

// RecordTokenValidation records a token pair validation.
func (m *Metrics) RecordTokenValidation(valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.TokenValidations.WithLabelValues(result).Inc()
}

// RecordAssertionVerification records a JWT verification outcome. result is "success"
// or the error code of the failure.
func (m *Metrics) RecordAssertionVerification(podID, result string) {
	if m == nil {
		return
	}
	m.AssertionVerifications.WithLabelValues(podID, result).Inc()
}

// RecordPodRequest records an outbound pod call. statusCode is 0 when no response was received.
func (m *Metrics) RecordPodRequest(operation string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.PodRequests.WithLabelValues(operation, status).Inc()
	m.PodRequestLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetPodClients sets the number of cached pod clients.
func (m *Metrics) SetPodClients(count int) {
	if m == nil {
		return
	}
	m.PodClients.Set(float64(count))
}

// RecordHTTPRequest records an inbound HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return string(constants.AuditResultSuccess)
	}
	return string(constants.AuditResultFailure)
}
