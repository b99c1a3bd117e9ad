package service

import (
	"context"
	"fmt"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/domain/models"
	domainService "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
	"github.com/turtacn/appauth/pkg/utils"
)

//go:generate mockery --name LoginAppService --output ../../domain/service/mocks --filename login_app_service_mock.go --structname MockLoginAppService
// LoginAppService signs a pod user into the app with the JWT the pod issued to the front end.
type LoginAppService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type loginAppServiceImpl struct {
	verifier AssertionVerifier
	users    domainService.UserDirectory
	audit    auditRecorder
	logger   logger.Logger
}

// NewLoginAppService creates a new instance of LoginAppService. users and audit may be nil.
func NewLoginAppService(verifier AssertionVerifier, users domainService.UserDirectory, audit domainService.AuditService, log logger.Logger) LoginAppService {
	log = log.WithComponent("LoginAppService")
	return &loginAppServiceImpl{
		verifier: verifier,
		users:    users,
		audit:    auditRecorder{sink: audit, logger: log},
		logger:   log,
	}
}

func (s *loginAppServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	claims, err := s.verifier.VerifyAssertionClaims(ctx, req.JWT, req.PodID)
	if err != nil {
		s.audit.failure(ctx, constants.AuditEventLoginFailed, req.PodID, err)
		return nil, err
	}

	resp := &dto.LoginResponse{
		Message:  fmt.Sprintf("Hello %s!", claims.User.Username),
		Username: claims.User.Username,
		PodUser:  claims.User,
	}
	if s.users != nil {
		if user, ok := s.users.FindByPodUserID(ctx, claims.User.ID.String()); ok {
			resp.User = user
		} else if user, err := s.users.Get(ctx, claims.User.Username); err == nil {
			resp.User = user
		}
	}

	event := models.NewAuditEvent(constants.AuditEventLoginSucceeded, constants.AuditResultSuccess, req.PodID).
		WithActor(claims.User.Username)
	if resp.User != nil {
		event = event.WithMetadata("local_user", resp.User.Username)
	}
	s.audit.record(ctx, event)
	return resp, nil
}
