package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	appservice "github.com/turtacn/appauth/internal/application/service"
	"github.com/turtacn/appauth/internal/config"
	domainservice "github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/internal/infrastructure/audit"
	"github.com/turtacn/appauth/internal/infrastructure/crypto"
	"github.com/turtacn/appauth/internal/infrastructure/kms"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/internal/infrastructure/mtls"
	"github.com/turtacn/appauth/internal/infrastructure/persistence/redis"
	"github.com/turtacn/appauth/internal/infrastructure/pod"
	"github.com/turtacn/appauth/internal/infrastructure/tokenstore"
	"github.com/turtacn/appauth/internal/infrastructure/users"
	"github.com/turtacn/appauth/internal/interfaces/http"
	"github.com/turtacn/appauth/internal/interfaces/http/handlers"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

func main() {
	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		log.Fatalf("Failed to create startup logger: %v", err)
	}

	// Load config
	loader := config.NewLoader(startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	ctx := context.Background()

	// Initialize tracing
	tracer, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			appLogger.Error(context.Background(), "Failed to flush traces", err)
		}
	}()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	domainMetrics := monitoring.NewMetricsAdapter(metrics)

	// Mutual TLS transport shared by every pod client
	transport, err := mtls.BuildTransport(mtls.OptionsFromConfig(&cfg.Client), appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to build mutual TLS transport", err)
	}

	directory := pod.NewMemoryDirectory()
	clients := pod.NewClientRegistry(directory, transport, cfg.Client.RequestTimeout, pod.ClientDeps{
		Metrics: domainMetrics,
		Tracer:  tracer,
		Logger:  appLogger,
	})

	// Token store, backed by Redis when shared between replicas
	var redisClient goredis.UniversalClient
	if cfg.TokenCache.Backend == constants.BackendRedis {
		redisConn, err := redis.NewRedisConnection(&cfg.Redis, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to connect to Redis", err)
		}
		defer redisConn.Close()
		redisClient = redisConn.GetClient()
	}
	store, err := tokenstore.New(&cfg.TokenCache, redisClient, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create token store", err)
	}

	// The app signs identity assertions only when a key is configured
	var signer domainservice.AssertionSigner
	keySource, err := kms.NewKeySource(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create key source", err)
	}
	if keySource != nil {
		signer = crypto.NewJWTManager(keySource, cfg.Auth.AssertionTTL, appLogger)
	}

	auditSink, closeAudit, err := audit.NewAuditService(&cfg.Audit, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to create audit sink", err)
	}
	defer func() {
		if err := closeAudit(); err != nil {
			appLogger.Error(context.Background(), "Failed to close audit sink", err)
		}
	}()

	userDirectory := users.NewMemoryUserDirectory(cfg.Users)

	// Initialize application services
	authSvc := appservice.NewAuthAppService(appservice.AuthAppServiceDeps{
		Clients: clients,
		Store:   store,
		Signer:  signer,
		AppID:   cfg.App.AppID,
		Audit:   auditSink,
		Metrics: domainMetrics,
		Tracer:  tracer,
		Logger:  appLogger,
	})
	verifier := appservice.NewAssertionVerifier(clients, constants.JWTAlgorithm(cfg.Auth.PodJWTAlgorithm), domainMetrics, tracer, appLogger)
	loginSvc := appservice.NewLoginAppService(verifier, userDirectory, auditSink, appLogger)
	podSvc := appservice.NewPodAppService(directory, auditSink, appLogger)

	// Hot reload: log level, webhook key and local users
	var webhookKey atomic.Pointer[string]
	initialKey := cfg.Webhook.APIKey.Value()
	webhookKey.Store(&initialKey)
	loader.OnChange(func(newCfg *config.Config) {
		if err := appLogger.SetLevel(newCfg.Log.Level); err != nil {
			appLogger.Warn(context.Background(), "Ignoring invalid log level", logger.Fields{"level": newCfg.Log.Level})
		}
		key := newCfg.Webhook.APIKey.Value()
		webhookKey.Store(&key)
		userDirectory.Replace(newCfg.Users)
	})
	loader.WatchConfig()

	// Initialize HTTP handlers and router
	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"token_store": store.Ping,
		"mtls_transport": func(context.Context) error {
			if transport.TLSClientConfig == nil || len(transport.TLSClientConfig.Certificates) == 0 {
				return errors.New("client identity not loaded")
			}
			return nil
		},
	}, appLogger)

	router := http.NewRouter(http.RouterDeps{
		Config:        &cfg.Server,
		Logger:        appLogger,
		Tracer:        tracer,
		Metrics:       metrics,
		WebhookKey:    func() string { return *webhookKey.Load() },
		AuthHandler:   handlers.NewAuthHandler(authSvc, loginSvc, cfg.App.AppID, appLogger),
		PodHandler:    handlers.NewPodHandler(podSvc, appLogger),
		HealthHandler: healthHandler,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Start()
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLogger.Info(ctx, "Shutting down", logger.Fields{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(ctx, "HTTP server failed", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Server forced to shutdown", err)
	}
	appLogger.Info(shutdownCtx, "Server stopped")
}
