package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/api/middleware"
	cfgpkg "github.com/novrain/SL-651/internal/config"
)

// Server HTTP 服务封装
type Server struct {
	engine *gin.Engine
	srv    *http.Server
}

type options struct {
	metricsPath    string
	metricsHandler http.Handler
	ready          func(context.Context) bool
	logger         *zap.Logger
}

// Option 服务选项
type Option func(*options)

// WithMetrics 在 path 暴露指标，path 为空时用 /metrics
func WithMetrics(path string, h http.Handler) Option {
	return func(o *options) {
		if path != "" {
			o.metricsPath = path
		}
		o.metricsHandler = h
	}
}

// WithReadiness /readyz 的就绪判断，未设置时总是就绪
func WithReadiness(fn func(context.Context) bool) Option {
	return func(o *options) { o.ready = fn }
}

// WithLogger 记录访问日志
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New 创建 Gin + HTTP Server，注册 /healthz、/readyz 与指标路由
func New(cfg cfgpkg.HTTPConfig, opts ...Option) *Server {
	o := options{metricsPath: "/metrics", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	r := gin.New()
	r.Use(gin.Recovery(), accessLog(o.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if o.ready == nil || o.ready(c.Request.Context()) {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if o.metricsHandler != nil {
		r.GET(o.metricsPath, gin.WrapH(o.metricsHandler))
	}

	return &Server{
		engine: r,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
}

// accessLog 5xx 记 Error，其余记 Debug；探针路径不记录
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
		}
		if id := c.GetString(middleware.RequestIDKey); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Debug("http request", fields...)
	}
}

// Engine 用于注册业务路由
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start 阻塞直到关闭，正常关闭时返回 nil
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
