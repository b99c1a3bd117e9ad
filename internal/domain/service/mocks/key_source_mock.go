package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockKeySource struct {
	mock.Mock
}

func (m *MockKeySource) PrivateKeyPEM(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockKeySource) Name() string {
	args := m.Called()
	return args.String(0)
}
