package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/internal/interfaces/http/handlers"
	"github.com/turtacn/appauth/internal/interfaces/http/middleware"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

// RouterDeps 路由器依赖
type RouterDeps struct {
	Config        *config.ServerConfig
	Logger        logger.Logger
	Tracer        *monitoring.TracingManager
	Metrics       *monitoring.Metrics
	Gatherer      prometheus.Gatherer
	WebhookKey    middleware.KeyFunc
	AuthHandler   *handlers.AuthHandler
	PodHandler    *handlers.PodHandler
	HealthHandler *handlers.HealthHandler
}

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	deps   RouterDeps
	server *http.Server
}

// NewRouter 创建路由器并注册全部路由
func NewRouter(deps RouterDeps) *Router {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	r := &Router{engine: gin.New(), deps: deps}
	r.setupRoutes()
	r.server = &http.Server{
		Addr:           deps.Config.Address(),
		Handler:        r.engine,
		ReadTimeout:    deps.Config.ReadTimeout,
		WriteTimeout:   deps.Config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	log := r.deps.Logger

	// 全局中间件
	r.engine.Use(middleware.Recovery(log))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(r.deps.Tracer, r.deps.Metrics))
	r.engine.Use(middleware.Logging(log))

	// CORS 配置
	corsConfig := cors.Config{
		AllowOrigins:  r.deps.Config.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	r.engine.Use(cors.New(corsConfig))

	// 健康检查路由（不需要认证）
	r.engine.GET("/health", r.deps.HealthHandler.HealthCheck)
	r.engine.GET("/ready", r.deps.HealthHandler.ReadinessCheck)
	r.engine.GET("/live", r.deps.HealthHandler.LivenessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))

	// Pprof 性能分析
	if r.deps.Config.EnablePprof {
		pprof.Register(r.engine)
	}

	// 前端调用的认证接口
	r.engine.POST("/authenticate", r.deps.AuthHandler.Authenticate)
	r.engine.POST("/validateTokens", r.deps.AuthHandler.ValidateTokens)
	r.engine.POST("/login", r.deps.AuthHandler.Login)
	r.engine.GET("/config/appConfig", r.deps.AuthHandler.AppConfig)

	// Pod 目录 Webhook（需要 API-Key）
	webhook := r.engine.Group("/podInfo")
	webhook.Use(middleware.APIKey(r.deps.WebhookKey, log))
	{
		webhook.POST("", r.deps.PodHandler.RegisterPod)
		webhook.GET("", r.deps.PodHandler.ListPods)
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.deps.Logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.deps.Logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

// Engine returns the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
