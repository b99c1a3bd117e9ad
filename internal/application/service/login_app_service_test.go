package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service/mocks"
	"github.com/turtacn/appauth/internal/infrastructure/users"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

type stubVerifier struct {
	claims *models.PodClaims
	err    error
	calls  int
}

func (v *stubVerifier) VerifyAssertion(ctx context.Context, token, podID string) (string, error) {
	claims, err := v.VerifyAssertionClaims(ctx, token, podID)
	if err != nil {
		return "", err
	}
	return claims.User.Username, nil
}

func (v *stubVerifier) VerifyAssertionClaims(context.Context, string, string) (*models.PodClaims, error) {
	v.calls++
	return v.claims, v.err
}

func TestLogin_GreetsVerifiedUser(t *testing.T) {
	verifier := &stubVerifier{claims: userClaims("jdoe", 0)}
	audit := new(mocks.MockAuditService)
	audit.On("LogEvent", mock.Anything, mock.MatchedBy(func(e models.AuditEvent) bool {
		return e.EventType == constants.AuditEventLoginSucceeded && e.Actor == "jdoe" && e.PodID == "acme"
	})).Return(nil).Once()

	svc := NewLoginAppService(verifier, nil, audit, logger.NewNoopLogger())

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{JWT: "a.b.c", PodID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "Hello jdoe!", resp.Message)
	assert.Equal(t, "jdoe", resp.Username)
	assert.Equal(t, "Jane Doe", resp.PodUser.DisplayName)
	assert.Nil(t, resp.User)
	audit.AssertExpectations(t)
}

func TestLogin_LinksLocalUser(t *testing.T) {
	directory := users.NewMemoryUserDirectory([]config.UserConfig{
		{Username: "jane", DisplayName: "Jane Local", PodUserID: "349026222344902"},
		{Username: "bob", DisplayName: "Bob Local"},
	})

	t.Run("by pod user id", func(t *testing.T) {
		svc := NewLoginAppService(&stubVerifier{claims: userClaims("jdoe", 0)}, directory, nil, logger.NewNoopLogger())
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{JWT: "a.b.c", PodID: "acme"})
		require.NoError(t, err)
		require.NotNil(t, resp.User)
		assert.Equal(t, "jane", resp.User.Username)
	})

	t.Run("by username", func(t *testing.T) {
		claims := userClaims("bob", 0)
		claims.User.ID = "1"
		svc := NewLoginAppService(&stubVerifier{claims: claims}, directory, nil, logger.NewNoopLogger())
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{JWT: "a.b.c", PodID: "acme"})
		require.NoError(t, err)
		require.NotNil(t, resp.User)
		assert.Equal(t, "Bob Local", resp.User.DisplayName)
	})

	t.Run("not linked", func(t *testing.T) {
		claims := userClaims("stranger", 0)
		claims.User.ID = "2"
		svc := NewLoginAppService(&stubVerifier{claims: claims}, directory, nil, logger.NewNoopLogger())
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{JWT: "a.b.c", PodID: "acme"})
		require.NoError(t, err)
		assert.Nil(t, resp.User)
		assert.Equal(t, "Hello stranger!", resp.Message)
	})
}

func TestLogin_VerificationFailure(t *testing.T) {
	verifier := &stubVerifier{err: errors.ErrAlgorithmMismatch("RS512", "RS256")}
	audit := new(mocks.MockAuditService)
	audit.On("LogEvent", mock.Anything, mock.MatchedBy(func(e models.AuditEvent) bool {
		return e.EventType == constants.AuditEventLoginFailed && e.ResultCode == constants.ErrCodeAlgorithmMismatch
	})).Return(nil).Once()

	svc := NewLoginAppService(verifier, nil, audit, logger.NewNoopLogger())

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{JWT: "a.b.c", PodID: "acme"})
	requireCode(t, err, constants.ErrCodeAlgorithmMismatch)
	assert.Nil(t, resp)
	audit.AssertExpectations(t)
}

func TestLogin_InvalidRequest(t *testing.T) {
	verifier := &stubVerifier{}
	svc := NewLoginAppService(verifier, nil, nil, logger.NewNoopLogger())

	for _, req := range []*dto.LoginRequest{
		{PodID: "acme"},
		{JWT: "a.b.c"},
	} {
		_, err := svc.Login(context.Background(), req)
		requireCode(t, err, constants.ErrCodeInvalidRequest)
	}
	assert.Zero(t, verifier.calls)
}
