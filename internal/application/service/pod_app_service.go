package service

import (
	"context"

	"github.com/turtacn/appauth/internal/application/dto"
	"github.com/turtacn/appauth/internal/domain/models"
	domainService "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
	"github.com/turtacn/appauth/pkg/utils"
)

//go:generate mockery --name PodAppService --output ../../domain/service/mocks --filename pod_app_service_mock.go --structname MockPodAppService
// PodAppService maintains the pod directory from the webhook pods call when the app is enabled.
type PodAppService interface {
	RegisterPod(ctx context.Context, req *dto.PodInfoRequest) error
	ListPods(ctx context.Context) ([]models.PodInfo, error)
}

type podAppServiceImpl struct {
	directory domainService.PodDirectory
	audit     auditRecorder
	logger    logger.Logger
}

// NewPodAppService creates a new instance of PodAppService
func NewPodAppService(directory domainService.PodDirectory, audit domainService.AuditService, log logger.Logger) PodAppService {
	log = log.WithComponent("PodAppService")
	return &podAppServiceImpl{
		directory: directory,
		audit:     auditRecorder{sink: audit, logger: log},
		logger:    log,
	}
}

// RegisterPod stores or replaces the registration. An already built client for the pod keeps its old host.
func (s *podAppServiceImpl) RegisterPod(ctx context.Context, req *dto.PodInfoRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if err := s.directory.Register(ctx, req.ToModel()); err != nil {
		s.logger.Error(ctx, "Failed to register pod", err, logger.Fields{"pod_id": req.PodID})
		return err
	}

	s.logger.Info(ctx, "Pod registered", logger.Fields{"pod_id": req.PodID, "pod_host": req.PodHost})
	s.audit.record(ctx, models.NewAuditEvent(constants.AuditEventPodRegistered, constants.AuditResultSuccess, req.PodID).
		WithActor("webhook").
		WithMetadata("pod_host", req.PodHost))
	return nil
}

func (s *podAppServiceImpl) ListPods(ctx context.Context) ([]models.PodInfo, error) {
	return s.directory.List(ctx)
}
