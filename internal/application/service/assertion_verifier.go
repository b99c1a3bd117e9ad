package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/appauth/internal/domain/models"
	domainService "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/keycodec"
	"github.com/turtacn/appauth/pkg/logger"
)

// AssertionVerifier checks user JWTs issued by a pod against the pod's current signing certificate.
type AssertionVerifier interface {
	// VerifyAssertion returns the username of the pod user the JWT was issued to.
	VerifyAssertion(ctx context.Context, token, podID string) (string, error)

	// VerifyAssertionClaims returns all verified claims. Claims.User is never nil and has a username.
	VerifyAssertionClaims(ctx context.Context, token, podID string) (*models.PodClaims, error)
}

type assertionVerifierImpl struct {
	clients   domainService.ClientProvider
	algorithm constants.JWTAlgorithm
	metrics   domainService.Metrics
	tracer    *monitoring.TracingManager
	logger    logger.Logger
}

// NewAssertionVerifier creates a verifier accepting only tokens signed with algorithm (RS512 when empty).
func NewAssertionVerifier(
	clients domainService.ClientProvider,
	algorithm constants.JWTAlgorithm,
	metrics domainService.Metrics,
	tracer *monitoring.TracingManager,
	log logger.Logger,
) AssertionVerifier {
	if algorithm == "" {
		algorithm = constants.DefaultPodJWTAlgorithm
	}
	if metrics == nil {
		metrics = domainService.NopMetrics{}
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &assertionVerifierImpl{
		clients:   clients,
		algorithm: algorithm,
		metrics:   metrics,
		tracer:    tracer,
		logger:    log.WithComponent("AssertionVerifier"),
	}
}

func (v *assertionVerifierImpl) VerifyAssertion(ctx context.Context, token, podID string) (string, error) {
	claims, err := v.VerifyAssertionClaims(ctx, token, podID)
	if err != nil {
		return "", err
	}
	return claims.User.Username, nil
}

func (v *assertionVerifierImpl) VerifyAssertionClaims(ctx context.Context, token, podID string) (claims *models.PodClaims, err error) {
	ctx, span := v.tracer.StartSpan(ctx, "appauth.VerifyAssertion")
	span.SetAttributes(attribute.String("pod.id", podID))
	defer span.End()

	defer func() {
		result := "success"
		if err != nil {
			result = string(errorCode(err))
			v.tracer.RecordError(ctx, err)
			v.logger.Warn(ctx, "Assertion rejected", logger.Fields{"pod_id": podID, "reason": err.Error()})
		}
		v.metrics.RecordAssertionVerification(podID, result)
	}()

	// 1. Never trust an unsigned token; this check needs no network call
	if !isSigned(token) {
		return nil, errors.ErrUnsignedAssertion()
	}

	// 2. Fetch the pod's current signing certificate
	client, err := v.clients.GetClient(ctx, podID)
	if err != nil {
		return nil, err
	}
	podCert, err := client.GetPodCertificate(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Parse it and take its public key
	cert, err := keycodec.ParseCertificate(podCert.Certificate)
	if err != nil {
		return nil, errors.ErrCertificateParse(podID).WithCause(err)
	}
	material, err := keycodec.PublicKeyFromCertificate(cert)
	if err != nil {
		return nil, errors.ErrCertificateParse(podID).WithCause(err)
	}

	// 4. Verify the signature and standard claims
	claims = &models.PodClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return material.PublicKey, nil
	})
	if err != nil {
		return nil, errors.ErrSignatureVerification("signature or claims rejected").WithCause(err)
	}
	if !parsed.Valid {
		return nil, errors.ErrSignatureVerification("token is not valid")
	}

	// 5. Re-check the declared algorithm even though the signature verified
	alg, _ := parsed.Header["alg"].(string)
	if alg != string(v.algorithm) {
		return nil, errors.ErrAlgorithmMismatch(string(v.algorithm), alg)
	}

	// 6. The embedded user must name someone
	if claims.User == nil || claims.User.Username == "" {
		return nil, errors.ErrMalformedClaims("user.username claim is missing")
	}

	v.logger.Info(ctx, "Assertion verified", logger.Fields{"pod_id": podID, "username": claims.User.Username})
	return claims, nil
}

// isSigned reports whether token has the three compact JWS sections with a non-empty signature.
func isSigned(token string) bool {
	parts := strings.Split(token, ".")
	return len(parts) == 3 && parts[2] != ""
}
