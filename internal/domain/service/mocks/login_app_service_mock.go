package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/appauth/internal/application/dto"
)

type MockLoginAppService struct {
	mock.Mock
}

func (m *MockLoginAppService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}
