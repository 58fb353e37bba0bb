// Package middleware 提供编解码控制台的 HTTP 中间件
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyHeader 控制台 API Key 请求头
const APIKeyHeader = "X-API-Key"

// AuthenticatedKey 认证通过后写入 gin.Context 的键
const AuthenticatedKey = "authenticated"

// AuthConfig API认证配置
type AuthConfig struct {
	APIKeys []string `json:"api_keys"`
	Enabled bool     `json:"enabled"`
}

// NewAuthConfig 配置了 API Key 时启用认证
func NewAuthConfig(keys []string) AuthConfig {
	return AuthConfig{APIKeys: keys, Enabled: len(keys) > 0}
}

// APIKeyAuth 校验 X-API-Key 或 Authorization: Bearer，缺失 401，无效 403。
// 拒绝时返回与控制台一致的响应结构。
func APIKeyAuth(cfg AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		apiKey := extractAPIKey(c.Request)
		if apiKey == "" {
			logger.Warn("api auth: missing api key",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote_addr", c.ClientIP()),
			)
			abortJSON(c, http.StatusUnauthorized, "missing api key")
			return
		}
		if _, ok := keys[apiKey]; !ok {
			logger.Warn("api auth: invalid api key",
				zap.String("path", c.Request.URL.Path),
				zap.String("remote_addr", c.ClientIP()),
				zap.String("api_key_prefix", maskAPIKey(apiKey)),
			)
			abortJSON(c, http.StatusForbidden, "invalid api key")
			return
		}
		c.Set(AuthenticatedKey, true)
		c.Next()
	}
}

func extractAPIKey(r *http.Request) string {
	if k := r.Header.Get(APIKeyHeader); k != "" {
		return k
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// abortJSON 以控制台响应结构终止请求
func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":       status,
		"message":    message,
		"request_id": c.GetString(RequestIDKey),
		"timestamp":  time.Now().Unix(),
	})
}

// maskAPIKey 仅保留前4位和后4位
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// CORS 允许浏览器直接调用控制台
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+APIKeyHeader+", "+RequestIDHeader+", Authorization")
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
