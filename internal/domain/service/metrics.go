// Package service defines the interfaces for domain services.
package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordHandshake records the outcome and latency of an app authentication handshake.
	// RecordHandshake 记录应用认证握手的结果和延迟。
	RecordHandshake(podID string, success bool, duration time.Duration)

	// RecordTokenValidation records the outcome of a token pair validation.
	// RecordTokenValidation 记录令牌对验证的结果。
	RecordTokenValidation(valid bool)

	// RecordAssertionVerification records the outcome of a pod JWT verification.
	// RecordAssertionVerification 记录 Pod JWT 验证的结果。
	RecordAssertionVerification(podID, result string)

	// RecordPodRequest records an outbound call to a pod.
	// RecordPodRequest 记录对 Pod 的出站调用。
	RecordPodRequest(operation string, statusCode int, duration time.Duration)

	// SetPodClients records the number of cached pod clients.
	// SetPodClients 记录已缓存的 Pod 客户端数量。
	SetPodClients(count int)
}

// NopMetrics discards every metric.
type NopMetrics struct{}

func (NopMetrics) RecordHandshake(string, bool, time.Duration) {}
func (NopMetrics) RecordTokenValidation(bool)                  {}
func (NopMetrics) RecordAssertionVerification(string, string)  {}
func (NopMetrics) RecordPodRequest(string, int, time.Duration) {}
func (NopMetrics) SetPodClients(int)                           {}
