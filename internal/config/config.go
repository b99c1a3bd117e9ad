package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/appauth/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	App        AppConfig        `mapstructure:"app"`
	Client     ClientConfig     `mapstructure:"client"`
	Auth       AuthConfig       `mapstructure:"auth"`
	TokenCache TokenCacheConfig `mapstructure:"token_cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Users      []UserConfig     `mapstructure:"users"`
}

// Secret is a string that redacts itself whenever it is printed or serialized.
type Secret string

const secretRedacted = "[REDACTED]"

func (s Secret) String() string               { return secretRedacted }
func (s Secret) GoString() string             { return secretRedacted }
func (s Secret) MarshalText() ([]byte, error) { return []byte(secretRedacted), nil }
func (s Secret) Value() string                { return string(s) }
func (s Secret) IsEmpty() bool                { return s == "" }

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnablePprof  bool          `mapstructure:"enable_pprof"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// Address returns host:port for the HTTP listener.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// AppConfig identifies this extension app to the pods.
type AppConfig struct {
	AppID string `mapstructure:"app_id"`
}

// ClientConfig configures the mutual TLS transport shared by every pod client.
type ClientConfig struct {
	KeystoreFile       string        `mapstructure:"keystore_file"`
	KeystorePassword   Secret        `mapstructure:"keystore_password"`
	TruststoreFile     string        `mapstructure:"truststore_file"`
	TruststoreFormat   string        `mapstructure:"truststore_format"`
	TruststorePassword Secret        `mapstructure:"truststore_password"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	MaxIdleConnsPerPod int           `mapstructure:"max_idle_conns_per_pod"`
}

// AuthConfig configures the app's own signing key and the assertion checks.
// At most one of PrivateKeyFile and VaultPath is used; the file wins when both are set.
type AuthConfig struct {
	PrivateKeyFile  string        `mapstructure:"private_key_file"`
	VaultPath       string        `mapstructure:"vault_path"`
	VaultField      string        `mapstructure:"vault_field"`
	AssertionTTL    time.Duration `mapstructure:"assertion_ttl"`
	PodJWTAlgorithm string        `mapstructure:"pod_jwt_algorithm"`
}

// SignsAssertions reports whether the handshake should carry an auth token.
func (c AuthConfig) SignsAssertions() bool {
	return c.PrivateKeyFile != "" || c.VaultPath != ""
}

type TokenCacheConfig struct {
	Backend string        `mapstructure:"backend"`
	MaxSize int           `mapstructure:"max_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password Secret `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type VaultConfig struct {
	Address   string `mapstructure:"address"`
	Token     Secret `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
}

type WebhookConfig struct {
	APIKey Secret `mapstructure:"api_key"`
}

// SigningKey, when set, adds an HMAC-SHA256 signature header to every Kafka audit record.
type AuditConfig struct {
	Backend    string      `mapstructure:"backend"`
	SigningKey Secret      `mapstructure:"signing_key"`
	Kafka      KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// UserConfig is a local account that may be linked to a pod user.
type UserConfig struct {
	Username    string `mapstructure:"username"`
	DisplayName string `mapstructure:"display_name"`
	Email       string `mapstructure:"email"`
	PodUserID   string `mapstructure:"pod_user_id"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("server.port %d is out of range", c.Server.Port)
	}
	if c.App.AppID == "" {
		add("app.app_id is required")
	}
	if c.Client.KeystoreFile == "" {
		add("client.keystore_file is required")
	}
	if c.Client.TruststoreFile == "" {
		add("client.truststore_file is required")
	}
	switch c.Client.TruststoreFormat {
	case constants.TrustStoreFormatPEM, constants.TrustStoreFormatPKCS12:
	default:
		add("client.truststore_format %q must be %q or %q", c.Client.TruststoreFormat,
			constants.TrustStoreFormatPEM, constants.TrustStoreFormatPKCS12)
	}
	if c.Client.ConnectTimeout <= 0 || c.Client.RequestTimeout <= 0 {
		add("client.connect_timeout and client.request_timeout must be positive")
	}
	if c.Auth.VaultPath != "" && c.Auth.PrivateKeyFile == "" && c.Vault.Address == "" {
		add("vault.address is required when auth.vault_path is set")
	}
	switch constants.JWTAlgorithm(c.Auth.PodJWTAlgorithm) {
	case constants.AlgorithmRS256, constants.AlgorithmRS384, constants.AlgorithmRS512:
	default:
		add("auth.pod_jwt_algorithm %q is not an RSA algorithm", c.Auth.PodJWTAlgorithm)
	}
	if c.Auth.AssertionTTL <= 0 {
		add("auth.assertion_ttl must be positive")
	}
	if c.TokenCache.MaxSize <= 0 {
		add("token_cache.max_size must be positive")
	}
	if c.TokenCache.TTL <= 0 {
		add("token_cache.ttl must be positive")
	}
	switch c.TokenCache.Backend {
	case constants.BackendMemory:
	case constants.BackendRedis:
		if c.Redis.Address == "" {
			add("redis.address is required for the redis token cache")
		}
	default:
		add("token_cache.backend %q is not supported", c.TokenCache.Backend)
	}
	switch c.Audit.Backend {
	case constants.BackendLog:
	case constants.BackendKafka:
		if len(c.Audit.Kafka.Brokers) == 0 || c.Audit.Kafka.Topic == "" {
			add("audit.kafka.brokers and audit.kafka.topic are required for the kafka audit sink")
		}
	default:
		add("audit.backend %q is not supported", c.Audit.Backend)
	}
	if c.Webhook.APIKey.IsEmpty() {
		add("webhook.api_key is required")
	}
	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		if u.Username == "" {
			add("users[%d].username is required", i)
			continue
		}
		if seen[u.Username] {
			add("users[%d].username %q is duplicated", i, u.Username)
		}
		seen[u.Username] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
