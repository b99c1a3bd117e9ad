package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/pkg/logger"
)

const checkTimeout = 2 * time.Second

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]HealthCheck
	log    logger.Logger
}

// NewHealthHandler creates a new HealthHandler that runs checks for /health and /ready.
func NewHealthHandler(checks map[string]HealthCheck, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log.WithComponent("HealthHandler"),
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Checks the health of the service and its dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks := h.performChecks(c.Request.Context())

	resp := dto.HealthResponse{Status: "healthy", Checks: checks}
	httpStatus := http.StatusOK
	for name, checkStatus := range checks {
		if checkStatus != "ok" {
			resp.Status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Health check failed", logger.Fields{"check": name, "status": checkStatus})
		}
	}
	c.JSON(httpStatus, resp)
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service is ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c) // readiness is the same as healthiness
}

// LivenessCheck reports that the process is serving requests.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "alive"})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	checks := make(map[string]string, len(h.checks))

	wg.Add(len(h.checks))
	for name, check := range h.checks {
		go func(name string, check HealthCheck) {
			defer wg.Done()
			status := "ok"
			if err := check(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return checks
}
