package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service/mocks"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

func newPodRouter(podSvc *mocks.MockPodAppService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPodHandler(podSvc, logger.NewNoopLogger())
	router := gin.New()
	router.POST("/podInfo", handler.RegisterPod)
	router.GET("/podInfo", handler.ListPods)
	return router
}

func TestPodHandler_RegisterPod(t *testing.T) {
	podSvc := new(mocks.MockPodAppService)
	podSvc.On("RegisterPod", mock.Anything, &dto.PodInfoRequest{
		PodID:     "acme",
		PodHost:   "https://acme.example.com",
		AgentHost: "https://acme-agent.example.com",
	}).Return(nil).Once()
	podSvc.On("RegisterPod", mock.Anything, &dto.PodInfoRequest{PodHost: "https://acme.example.com"}).
		Return(errors.ErrInvalidRequest("pod_id is required")).Once()
	router := newPodRouter(podSvc)

	rr := post(router, "/podInfo", `{"podId":"acme","podHost":"https://acme.example.com","agentHost":"https://acme-agent.example.com"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = post(router, "/podInfo", `{"podHost":"https://acme.example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", errorCodeOf(t, rr))

	rr = post(router, "/podInfo", `{"podId":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	podSvc.AssertExpectations(t)
}

func TestPodHandler_ListPods(t *testing.T) {
	podSvc := new(mocks.MockPodAppService)
	podSvc.On("ListPods", mock.Anything).Return([]models.PodInfo{
		{PodID: "acme", PodHost: "https://acme.example.com"},
	}, nil)
	router := newPodRouter(podSvc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/podInfo", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Pods []models.PodInfo `json:"pods"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Pods, 1)
	assert.Equal(t, "acme", body.Pods[0].PodID)
}
