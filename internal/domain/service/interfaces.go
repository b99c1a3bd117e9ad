package service

import (
	"context"

	"github.com/turtacn/appauth/internal/domain/models"
)

//go:generate mockery --name PodDirectory --output mocks --outpkg mocks
// PodDirectory maps a pod ID to the registration received from the directory webhook.
// PodDirectory 将 Pod ID 映射到从目录 Webhook 收到的注册信息。
type PodDirectory interface {
	// Register creates or replaces the registration for info.PodID.
	// Register 创建或替换 info.PodID 的注册信息。
	Register(ctx context.Context, info models.PodInfo) error

	// Lookup returns the registration for podID, or an unknown_tenant error.
	// Lookup 返回 podID 的注册信息，不存在时返回 unknown_tenant 错误。
	Lookup(ctx context.Context, podID string) (models.PodInfo, error)

	// List returns every registration.
	// List 返回所有注册信息。
	List(ctx context.Context) ([]models.PodInfo, error)
}

//go:generate mockery --name AuthenticationClient --output mocks --outpkg mocks
// AuthenticationClient calls the session authentication endpoints of one pod over mutual TLS.
// AuthenticationClient 通过双向 TLS 调用单个 Pod 的会话认证端点。
type AuthenticationClient interface {
	// PodID returns the pod the client is bound to.
	PodID() string

	// GetPodCertificate fetches the pod's current JWT signing certificate.
	// GetPodCertificate 获取 Pod 当前的 JWT 签名证书。
	GetPodCertificate(ctx context.Context) (*models.PodCertificate, error)

	// Authenticate performs the extension app token exchange.
	// Authenticate 执行扩展应用的令牌交换。
	Authenticate(ctx context.Context, req models.AuthenticateRequest) (*models.AuthenticateResponse, error)
}

//go:generate mockery --name ClientProvider --output mocks --outpkg mocks
// ClientProvider hands out the cached AuthenticationClient of a pod.
// ClientProvider 提供已缓存的 Pod AuthenticationClient。
type ClientProvider interface {
	GetClient(ctx context.Context, podID string) (AuthenticationClient, error)
}

//go:generate mockery --name TokenStore --output mocks --outpkg mocks
// TokenStore holds app token to symphony token pairs for a bounded time.
// TokenStore 在有限时间内保存应用令牌与 Symphony 令牌的配对。
type TokenStore interface {
	// Put stores the pair. Entries are never updated, only read or expired.
	// Put 保存令牌对。条目不会被更新，只会被读取或过期。
	Put(ctx context.Context, appToken, symphonyToken string) error

	// Get returns the symphony token stored for appToken.
	// Get 返回 appToken 对应的 Symphony 令牌。
	Get(ctx context.Context, appToken string) (string, bool, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

//go:generate mockery --name KeySource --output mocks --outpkg mocks
// KeySource supplies the PEM text of the app's private signing key.
// KeySource 提供应用私有签名密钥的 PEM 文本。
type KeySource interface {
	// PrivateKeyPEM returns the PEM encoded key.
	PrivateKeyPEM(ctx context.Context) (string, error)

	// Name identifies the source in error messages without exposing key material.
	Name() string
}

//go:generate mockery --name AssertionSigner --output mocks --outpkg mocks
// AssertionSigner signs the short lived JWT that proves the app's identity to a pod.
// AssertionSigner 签署向 Pod 证明应用身份的短期 JWT。
type AssertionSigner interface {
	SignAppAssertion(ctx context.Context, appID string) (string, error)
}

// TokenGenerator generates random opaque app tokens.
type TokenGenerator interface {
	GenerateToken() string
}

//go:generate mockery --name AuditService --output mocks --outpkg mocks
// AuditService defines the interface for logging security-sensitive audit events.
// AuditService 定义了记录安全敏感审计事件的接口。
type AuditService interface {
	LogEvent(ctx context.Context, event models.AuditEvent) error
}

//go:generate mockery --name UserDirectory --output mocks --outpkg mocks
// UserDirectory resolves local accounts of the app.
// UserDirectory 解析应用的本地账户。
type UserDirectory interface {
	// Get returns the user with the given username, or a user_not_found error.
	Get(ctx context.Context, username string) (*models.User, error)

	// FindByPodUserID returns the user linked to a pod user ID.
	FindByPodUserID(ctx context.Context, podUserID string) (*models.User, bool)
}
