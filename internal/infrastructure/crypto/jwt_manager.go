// Package crypto signs the short-lived assertions the app uses to prove its identity to a pod.
package crypto

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/keycodec"
	"github.com/turtacn/appauth/pkg/logger"
)

// JWTManager signs app assertions with the private key from a KeySource.
// The key is loaded and parsed on every call; nothing is cached here.
type JWTManager struct {
	keySource service.KeySource
	method    jwt.SigningMethod
	ttl       time.Duration
	now       func() time.Time
	log       logger.Logger
}

var _ service.AssertionSigner = (*JWTManager)(nil)

// NewJWTManager creates a signer producing RS512 assertions valid for ttl.
func NewJWTManager(keySource service.KeySource, ttl time.Duration, log logger.Logger) *JWTManager {
	if ttl <= 0 {
		ttl = constants.AppAssertionTTL
	}
	return &JWTManager{
		keySource: keySource,
		method:    jwt.SigningMethodRS512,
		ttl:       ttl,
		now:       time.Now,
		log:       log.WithComponent("JWTManager"),
	}
}

// SignAppAssertion returns a JWT with sub set to appID that expires ttl from now.
func (j *JWTManager) SignAppAssertion(ctx context.Context, appID string) (string, error) {
	pemText, err := j.keySource.PrivateKeyPEM(ctx)
	if err != nil {
		return "", err
	}

	material, err := keycodec.ParsePrivateKey(pemText)
	if err != nil {
		j.log.Error(ctx, "Failed to parse app private key", err, logger.Fields{"source": j.keySource.Name()})
		return "", errors.ErrKeyLoad(j.keySource.Name(), "cannot parse private key").WithCause(err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   appID,
		ExpiresAt: jwt.NewNumericDate(j.now().Add(j.ttl)),
	}
	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(material.PrivateKey)
	if err != nil {
		j.log.Error(ctx, "Failed to sign JWT", err)
		return "", errors.ErrKeyLoad(j.keySource.Name(), "cannot sign assertion").WithCause(err)
	}

	j.log.Debug(ctx, "Signed app assertion", logger.Fields{
		"app_id": appID,
		"bits":   material.Bits(),
	})
	return signed, nil
}
