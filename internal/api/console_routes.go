package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/api/middleware"
	"github.com/novrain/SL-651/internal/config"
	"github.com/novrain/SL-651/internal/metrics"
	"github.com/novrain/SL-651/internal/schemawatch"
)

// RegisterConsoleRoutes 注册编解码控制台路由
func RegisterConsoleRoutes(
	r *gin.Engine,
	reg *schemawatch.Registry,
	m *metrics.CodecMetrics,
	cfg config.ConsoleConfig,
	logger *zap.Logger,
) {
	if !cfg.Enable {
		logger.Info("codec console disabled, skipping route registration")
		return
	}

	handler := NewConsoleHandler(reg, m, logger)

	v1 := r.Group("/api/v1")
	v1.Use(
		middleware.CORS(),
		middleware.RequestID(),
		middleware.RequestMetrics(m),
	)

	authCfg := middleware.NewAuthConfig(cfg.APIKeys)
	if authCfg.Enabled {
		v1.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("console authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("console authentication disabled - only for development!")
	}
	// 认证之后限流，未认证的 Key 不能换出新令牌桶
	v1.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.Burst), logger))

	// 浏览器预检由 CORS 中间件直接应答
	v1.OPTIONS("/*path", func(c *gin.Context) {})

	// 模板
	v1.GET("/schemas", handler.ListSchemas)
	v1.POST("/schemas/:name/frames", handler.CreateFrame)

	// 报文
	v1.POST("/frames/decode", handler.DecodeFrame)

	logger.Info("codec console routes registered", zap.Int("endpoints", 3))
}
