// Package kms loads the private key the app signs its identity assertions with.
package kms

import (
	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/logger"
)

// NewKeySource returns the key source configured in cfg, or nil when the app does not
// sign assertions. A key file takes precedence over a Vault path.
func NewKeySource(cfg *config.Config, log logger.Logger) (service.KeySource, error) {
	switch {
	case cfg.Auth.PrivateKeyFile != "":
		return NewFileKeySource(cfg.Auth.PrivateKeyFile), nil
	case cfg.Auth.VaultPath != "":
		client, err := NewVaultClient(&cfg.Vault)
		if err != nil {
			return nil, err
		}
		return NewVaultKeySource(client, cfg.Vault.MountPath, cfg.Auth.VaultPath, cfg.Auth.VaultField, log), nil
	default:
		return nil, nil
	}
}
