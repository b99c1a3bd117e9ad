package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/application/service"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

// PodHandler serves the pod directory webhook. Routes are expected behind the API key middleware.
type PodHandler struct {
	podService service.PodAppService
	logger     logger.Logger
}

// NewPodHandler creates a new PodHandler.
func NewPodHandler(podService service.PodAppService, log logger.Logger) *PodHandler {
	return &PodHandler{podService: podService, logger: log.WithComponent("PodHandler")}
}

// RegisterPod stores the registration a pod posts when the app is enabled on it.
func (h *PodHandler) RegisterPod(c *gin.Context) {
	var req dto.PodInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, errors.ErrInvalidRequest("malformed pod info").WithCause(err))
		return
	}
	if err := h.podService.RegisterPod(c.Request.Context(), &req); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ListPods returns every registered pod.
func (h *PodHandler) ListPods(c *gin.Context) {
	pods, err := h.podService.ListPods(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pods": pods})
}
