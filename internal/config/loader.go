package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

// ConfigPathEnv names an explicit configuration file that overrides the search path.
const ConfigPathEnv = "APPAUTH_CONFIG"

// Loader reads configuration from file and environment and keeps the viper instance
// around so the file can be watched for changes.
type Loader struct {
	v   *viper.Viper
	log logger.Logger

	mu        sync.Mutex
	listeners []func(*Config)
}

// NewLoader creates a Loader with defaults, search paths and environment bindings applied.
func NewLoader(log logger.Logger) *Loader {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv(ConfigPathEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/appauth/")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("APPAUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about.
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}

	return &Loader{v: v, log: log}
}

// SetConfigFile forces a specific configuration file.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Load reads, unmarshals and validates the configuration. A missing config file
// is tolerated so the service can be configured from the environment alone.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		l.log.Warn(context.Background(), "No config file found, using defaults and environment")
	} else {
		l.log.Info(context.Background(), "Loaded configuration", logger.Fields{"file": l.v.ConfigFileUsed()})
	}
	return l.decode()
}

// OnChange registers a callback invoked with the new configuration after each valid reload.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// WatchConfig starts watching the config file. Invalid edits are logged and ignored.
func (l *Loader) WatchConfig() {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		ctx := context.Background()
		cfg, err := l.decode()
		if err != nil {
			l.log.Error(ctx, "Ignoring invalid configuration change", err, logger.Fields{"file": e.Name})
			return
		}
		l.log.Info(ctx, "Configuration reloaded", logger.Fields{"file": e.Name, "op": e.Op.String()})

		l.mu.Lock()
		listeners := append([]func(*Config){}, l.listeners...)
		l.mu.Unlock()
		for _, fn := range listeners {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(log logger.Logger) (*Config, error) {
	return NewLoader(log).Load()
}

var envOnlyKeys = []string{
	"app.app_id",
	"client.keystore_file",
	"client.keystore_password",
	"client.truststore_file",
	"client.truststore_password",
	"auth.private_key_file",
	"auth.vault_path",
	"tracing.enabled",
	"tracing.jaeger_endpoint",
	"redis.address",
	"redis.password",
	"vault.address",
	"vault.token",
	"webhook.api_key",
	"audit.signing_key",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8443)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("log.level", string(constants.LogLevelInfo))
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("client.truststore_format", constants.TrustStoreFormatPEM)
	v.SetDefault("client.connect_timeout", "5s")
	v.SetDefault("client.request_timeout", "15s")
	v.SetDefault("client.max_idle_conns_per_pod", 10)

	v.SetDefault("auth.assertion_ttl", constants.AppAssertionTTL.String())
	v.SetDefault("auth.pod_jwt_algorithm", string(constants.DefaultPodJWTAlgorithm))
	v.SetDefault("auth.vault_field", "private_key")

	v.SetDefault("token_cache.backend", constants.BackendMemory)
	v.SetDefault("token_cache.max_size", constants.TokenCacheDefaultMaxSize)
	v.SetDefault("token_cache.ttl", constants.TokenCacheDefaultTTL.String())

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("vault.mount_path", "secret")

	v.SetDefault("audit.backend", constants.BackendLog)
	v.SetDefault("audit.kafka.batch_timeout", "1s")
}
