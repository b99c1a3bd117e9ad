package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
)

// Observability returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// It continues a trace propagated by the caller, opens a server span named "METHOD /route" and records
// the request counter and latency labelled by route template, method and status.
// Observability 返回一个集成了 Prometheus 指标和 OpenTelemetry 跟踪的 Gin 中间件。
// 它延续调用方传播的追踪，开启名为 "METHOD /route" 的服务端 Span，并按路由模板、方法和状态码记录请求指标。
func Observability(tracer *monitoring.TracingManager, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// c.FullPath() is the route template ("/podInfo"), which keeps label cardinality low.
		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}

		ctx := c.Request.Context()
		if tracer != nil {
			ctx = tracer.ExtractTraceContext(ctx, propagation.HeaderCarrier(c.Request.Header))
		}
		ctx, span := tracer.StartSpan(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		metrics.RecordHTTPRequest(route, c.Request.Method, status, time.Since(start))
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
	}
}
