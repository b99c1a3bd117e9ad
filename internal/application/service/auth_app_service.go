package service

import (
	"context"
	"crypto/subtle"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/appauth/internal/domain/models"
	domainService "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

//go:generate mockery --name AuthAppService --output ../../domain/service/mocks --filename auth_app_service_mock.go --structname MockAuthAppService
// AuthAppService runs the two-token handshake between the app and a pod.
// AuthAppService 负责应用与 Pod 之间的双令牌握手。
type AuthAppService interface {
	// InitiateHandshake sends a fresh app token to the pod and stores the symphony token it returns.
	// InitiateHandshake 向 Pod 发送新的应用令牌，并保存 Pod 返回的 symphony 令牌。
	InitiateHandshake(ctx context.Context, podID string) (string, error)

	// ValidateTokens reports whether the pair was produced by a handshake that has not expired.
	// ValidateTokens 判断令牌对是否来自一次尚未过期的握手。
	ValidateTokens(ctx context.Context, appToken, symphonyToken string) bool
}

// AuthAppServiceDeps are the collaborators of the handshake. Signer is nil when the app
// does not sign identity assertions; Audit, Metrics and Tracer are optional.
type AuthAppServiceDeps struct {
	Clients domainService.ClientProvider
	Store   domainService.TokenStore
	Tokens  domainService.TokenGenerator
	Signer  domainService.AssertionSigner
	AppID   string
	Audit   domainService.AuditService
	Metrics domainService.Metrics
	Tracer  *monitoring.TracingManager
	Logger  logger.Logger
}

type authAppServiceImpl struct {
	clients domainService.ClientProvider
	store   domainService.TokenStore
	tokens  domainService.TokenGenerator
	signer  domainService.AssertionSigner
	appID   string
	audit   auditRecorder
	metrics domainService.Metrics
	tracer  *monitoring.TracingManager
	logger  logger.Logger
}

// NewAuthAppService creates a new instance of AuthAppService
func NewAuthAppService(deps AuthAppServiceDeps) AuthAppService {
	if deps.Tokens == nil {
		deps.Tokens = UUIDTokenGenerator{}
	}
	if deps.Metrics == nil {
		deps.Metrics = domainService.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoopLogger()
	}
	log := deps.Logger.WithComponent("AuthAppService")
	return &authAppServiceImpl{
		clients: deps.Clients,
		store:   deps.Store,
		tokens:  deps.Tokens,
		signer:  deps.Signer,
		appID:   deps.AppID,
		audit:   auditRecorder{sink: deps.Audit, tracer: deps.Tracer, logger: log},
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		logger:  log,
	}
}

// InitiateHandshake implements the first half of the app authentication flow.
func (s *authAppServiceImpl) InitiateHandshake(ctx context.Context, podID string) (appToken string, err error) {
	ctx, span := s.tracer.StartSpan(ctx, "appauth.InitiateHandshake")
	span.SetAttributes(attribute.String("pod.id", podID))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordHandshake(podID, err == nil, time.Since(start))
		if err != nil {
			s.tracer.RecordError(ctx, err)
			s.audit.failure(ctx, constants.AuditEventHandshakeFailed, podID, err)
		}
	}()

	// 1. Generate the app token
	appToken = s.tokens.GenerateToken()

	// 2. Resolve the pod client; unknown pods fail here
	client, err := s.clients.GetClient(ctx, podID)
	if err != nil {
		s.logger.Warn(ctx, "Cannot resolve pod client", logger.Fields{"pod_id": podID, "error": err.Error()})
		return "", err
	}

	// 3. Sign the identity assertion when a private key is configured
	req := models.AuthenticateRequest{AppToken: appToken}
	if s.signer != nil {
		req.AuthToken, err = s.signer.SignAppAssertion(ctx, s.appID)
		if err != nil {
			s.logger.Error(ctx, "Failed to sign app assertion", err, logger.Fields{"pod_id": podID})
			return "", err
		}
	}

	// 4. Exchange tokens with the pod
	resp, err := client.Authenticate(ctx, req)
	if err != nil {
		s.logger.Error(ctx, "Pod authentication failed", err, logger.Fields{"pod_id": podID})
		return "", err
	}
	if resp.SymphonyToken == "" {
		return "", errors.ErrTransport("authenticate", "pod returned an empty symphony token").WithMetadata("pod_id", podID)
	}

	// 5. Remember the pair
	if err = s.store.Put(ctx, appToken, resp.SymphonyToken); err != nil {
		s.logger.Error(ctx, "Failed to store token pair", err, logger.Fields{"pod_id": podID})
		return "", err
	}

	s.logger.Info(ctx, "Handshake completed", logger.Fields{
		"pod_id":         podID,
		"app_token":      logger.MaskString(appToken),
		"symphony_token": logger.MaskString(resp.SymphonyToken),
		"signed":         req.AuthToken != "",
	})
	s.audit.record(ctx, models.NewAuditEvent(constants.AuditEventHandshakeInitiated, constants.AuditResultSuccess, podID).
		WithActor(s.appID))
	return appToken, nil
}

// ValidateTokens implements the second half of the flow. It never fails; every problem yields false.
func (s *authAppServiceImpl) ValidateTokens(ctx context.Context, appToken, symphonyToken string) bool {
	valid := s.validate(ctx, appToken, symphonyToken)
	s.metrics.RecordTokenValidation(valid)

	eventType, result := constants.AuditEventTokensValidated, constants.AuditResultSuccess
	if !valid {
		eventType, result = constants.AuditEventTokensRejected, constants.AuditResultFailure
	}
	s.audit.record(ctx, models.NewAuditEvent(eventType, result, "").
		WithMetadata("app_token", logger.MaskString(appToken)))
	return valid
}

func (s *authAppServiceImpl) validate(ctx context.Context, appToken, symphonyToken string) bool {
	if appToken == "" || symphonyToken == "" {
		return false
	}
	stored, ok, err := s.store.Get(ctx, appToken)
	if err != nil {
		s.logger.Warn(ctx, "Token store lookup failed", logger.Fields{"error": err.Error()})
		return false
	}
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(symphonyToken)) == 1
}
