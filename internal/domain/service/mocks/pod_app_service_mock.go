package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/domain/models"
)

type MockPodAppService struct {
	mock.Mock
}

func (m *MockPodAppService) RegisterPod(ctx context.Context, req *dto.PodInfoRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockPodAppService) ListPods(ctx context.Context) ([]models.PodInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PodInfo), args.Error(1)
}
