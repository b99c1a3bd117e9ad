package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAuthAppService struct {
	mock.Mock
}

func (m *MockAuthAppService) InitiateHandshake(ctx context.Context, podID string) (string, error) {
	args := m.Called(ctx, podID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAppService) ValidateTokens(ctx context.Context, appToken, symphonyToken string) bool {
	args := m.Called(ctx, appToken, symphonyToken)
	return args.Bool(0)
}
