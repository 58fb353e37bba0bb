package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/novrain/SL-651/internal/metrics"
)

// RequestMetrics 按路由模板与状态码计数
func RequestMetrics(m *metrics.CodecMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ConsoleRequestTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
