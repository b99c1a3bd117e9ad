package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
)

type MockAuthenticationClient struct {
	mock.Mock
}

func (m *MockAuthenticationClient) PodID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAuthenticationClient) GetPodCertificate(ctx context.Context) (*models.PodCertificate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PodCertificate), args.Error(1)
}

func (m *MockAuthenticationClient) Authenticate(ctx context.Context, req models.AuthenticateRequest) (*models.AuthenticateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthenticateResponse), args.Error(1)
}

type MockClientProvider struct {
	mock.Mock
}

func (m *MockClientProvider) GetClient(ctx context.Context, podID string) (service.AuthenticationClient, error) {
	args := m.Called(ctx, podID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.AuthenticationClient), args.Error(1)
}
