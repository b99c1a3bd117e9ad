package kms

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

const defaultVaultField = "private_key"

// NewVaultClient creates a Vault client for the configured address and token.
func NewVaultClient(cfg *config.VaultConfig) (*vault.Client, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, errors.ErrInternalConfig("cannot create vault client").WithCause(err)
	}
	if !cfg.Token.IsEmpty() {
		client.SetToken(cfg.Token.Value())
	}
	return client, nil
}

// VaultKeySource reads the private key PEM from a KV v2 secret. The PEM is kept in a
// short-lived in-memory cache and concurrent misses share one Vault read.
type VaultKeySource struct {
	client  *vault.Client
	mount   string
	path    string
	field   string
	l1Cache *cache.Cache
	sf      singleflight.Group
	logger  logger.Logger
}

var _ service.KeySource = (*VaultKeySource)(nil)

// NewVaultKeySource creates a source reading field of the secret at mount/path.
func NewVaultKeySource(client *vault.Client, mount, path, field string, log logger.Logger) *VaultKeySource {
	if mount == "" {
		mount = "secret"
	}
	if field == "" {
		field = defaultVaultField
	}
	return &VaultKeySource{
		client:  client,
		mount:   mount,
		path:    path,
		field:   field,
		l1Cache: cache.New(constants.VaultKeyCacheTTL, 5*constants.VaultKeyCacheTTL),
		logger:  log.WithComponent("VaultKeySource"),
	}
}

func (s *VaultKeySource) PrivateKeyPEM(ctx context.Context) (string, error) {
	if v, found := s.l1Cache.Get(s.path); found {
		return v.(string), nil
	}

	v, err, _ := s.sf.Do(s.path, func() (interface{}, error) {
		secret, err := s.client.KVv2(s.mount).Get(ctx, s.path)
		if err != nil {
			s.logger.Error(ctx, "failed to read private key from Vault", err, logger.Fields{"path": s.path})
			return nil, errors.ErrKeyLoad(s.Name(), "cannot read secret").WithCause(err)
		}
		if secret == nil || secret.Data == nil {
			return nil, errors.ErrKeyLoad(s.Name(), "secret has no data")
		}
		pemData, ok := secret.Data[s.field].(string)
		if !ok || pemData == "" {
			return nil, errors.ErrKeyLoad(s.Name(), fmt.Sprintf("field %q not found or not a string", s.field))
		}
		s.l1Cache.Set(s.path, pemData, cache.DefaultExpiration)
		return pemData, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *VaultKeySource) Name() string {
	return fmt.Sprintf("vault:%s/%s#%s", s.mount, s.path, s.field)
}
