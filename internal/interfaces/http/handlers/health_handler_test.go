package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/pkg/logger"
)

func serveHealth(t *testing.T, checks map[string]HealthCheck, path string) (int, dto.HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(checks, logger.NewNoopLogger())
	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadinessCheck)
	router.GET("/live", handler.LivenessCheck)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body dto.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return stderrors.New("connection refused") }

	code, body := serveHealth(t, map[string]HealthCheck{"token_store": ok, "mtls_transport": ok}, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Checks["token_store"])

	code, body = serveHealth(t, map[string]HealthCheck{"token_store": down, "mtls_transport": ok}, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "error: connection refused", body.Checks["token_store"])
	assert.Equal(t, "ok", body.Checks["mtls_transport"])

	code, body = serveHealth(t, map[string]HealthCheck{"token_store": down}, "/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body.Status)
}
