// Package service provides the application use cases behind the HTTP API: the app
// authentication handshake, pod JWT login and the pod directory webhook.
package service

import (
	"github.com/google/uuid"

	domainService "github.com/turtacn/appauth/internal/domain/service"
)

// UUIDTokenGenerator issues app tokens as random version 4 UUIDs.
type UUIDTokenGenerator struct{}

var _ domainService.TokenGenerator = UUIDTokenGenerator{}

func (UUIDTokenGenerator) GenerateToken() string {
	return uuid.NewString()
}
