package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service/mocks"
	"github.com/turtacn/appauth/internal/infrastructure/pod"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

func TestRegisterPod(t *testing.T) {
	ctx := context.Background()
	directory := pod.NewMemoryDirectory()
	audit := new(mocks.MockAuditService)
	audit.On("LogEvent", mock.Anything, mock.MatchedBy(func(e models.AuditEvent) bool {
		return e.EventType == constants.AuditEventPodRegistered && e.Metadata["pod_host"] == "https://acme.example.com"
	})).Return(nil).Once()

	svc := NewPodAppService(directory, audit, logger.NewNoopLogger())

	err := svc.RegisterPod(ctx, &dto.PodInfoRequest{PodID: "acme", PodHost: "https://acme.example.com"})
	require.NoError(t, err)

	info, err := directory.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.com", info.PodHost)

	pods, err := svc.ListPods(ctx)
	require.NoError(t, err)
	assert.Len(t, pods, 1)
	audit.AssertExpectations(t)
}

func TestRegisterPod_ReplacesRegistration(t *testing.T) {
	ctx := context.Background()
	directory := pod.NewMemoryDirectory()
	svc := NewPodAppService(directory, nil, logger.NewNoopLogger())

	require.NoError(t, svc.RegisterPod(ctx, &dto.PodInfoRequest{PodID: "acme", PodHost: "https://old.example.com"}))
	require.NoError(t, svc.RegisterPod(ctx, &dto.PodInfoRequest{PodID: "acme", PodHost: "https://new.example.com"}))

	info, err := directory.Lookup(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", info.PodHost)
}

func TestRegisterPod_Invalid(t *testing.T) {
	directory := pod.NewMemoryDirectory()
	svc := NewPodAppService(directory, nil, logger.NewNoopLogger())

	tests := []struct {
		name string
		req  dto.PodInfoRequest
	}{
		{"missing pod id", dto.PodInfoRequest{PodHost: "https://acme.example.com"}},
		{"missing host", dto.PodInfoRequest{PodID: "acme"}},
		{"host not a url", dto.PodInfoRequest{PodID: "acme", PodHost: "acme"}},
		{"bad agent host", dto.PodInfoRequest{PodID: "acme", PodHost: "https://acme.example.com", AgentHost: "::"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := svc.RegisterPod(context.Background(), &req)
			requireCode(t, err, constants.ErrCodeInvalidRequest)
		})
	}

	pods, err := svc.ListPods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pods)
}
