package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxClients 客户端桶上限，超出后先清理空闲桶，仍满时淘汰最久未访问的
const maxClients = 4096

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端（已认证的 API Key，否则来源 IP）分别限流的令牌桶
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientBucket
	limit      rate.Limit
	burst      int
	idle       time.Duration
	maxClients int
	allowed    atomic.Int64
	rejected   atomic.Int64
}

// NewRateLimiter ratePerSec <= 0 表示不限流；burst <= 0 时取两倍速率
func NewRateLimiter(ratePerSec float64, burst int) *RateLimiter {
	l := &RateLimiter{
		clients:    make(map[string]*clientBucket),
		limit:      rate.Inf,
		burst:      burst,
		idle:       10 * time.Minute,
		maxClients: maxClients,
	}
	if ratePerSec > 0 {
		l.limit = rate.Limit(ratePerSec)
		if l.burst <= 0 {
			l.burst = int(ratePerSec*2) + 1
		}
	}
	return l
}

// Allow 非阻塞判断 client 是否还有令牌
func (l *RateLimiter) Allow(client string) bool {
	if l.limit == rate.Inf {
		l.allowed.Add(1)
		return true
	}

	now := time.Now()
	l.mu.Lock()
	b, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.evict(now)
		}
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		l.allowed.Add(1)
		return true
	}
	l.rejected.Add(1)
	return false
}

func (l *RateLimiter) evict(now time.Time) {
	var (
		oldest     string
		oldestSeen time.Time
	)
	for k, b := range l.clients {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.clients, k)
			continue
		}
		if oldest == "" || b.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = k, b.lastSeen
		}
	}
	if len(l.clients) >= l.maxClients {
		delete(l.clients, oldest)
	}
}

// RateLimiterStats 限流统计
type RateLimiterStats struct {
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	Clients       int     `json:"clients"`
	AllowedTotal  int64   `json:"allowed_total"`
	RejectedTotal int64   `json:"rejected_total"`
}

func (l *RateLimiter) Stats() RateLimiterStats {
	l.mu.Lock()
	clients := len(l.clients)
	l.mu.Unlock()

	rps := 0.0
	if l.limit != rate.Inf {
		rps = float64(l.limit)
	}
	return RateLimiterStats{
		RatePerSecond: rps,
		Burst:         l.burst,
		Clients:       clients,
		AllowedTotal:  l.allowed.Load(),
		RejectedTotal: l.rejected.Load(),
	}
}

// RateLimit 超出速率返回 429。需挂在 APIKeyAuth 之后：
// 只有通过认证的 API Key 单独成桶，其余请求按来源 IP 限流。
func RateLimit(l *RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		client := "ip:" + c.ClientIP()
		if c.GetBool(AuthenticatedKey) {
			client = "key:" + extractAPIKey(c.Request)
		}
		if l.Allow(client) {
			c.Next()
			return
		}
		logger.Warn("rate limited",
			zap.String("path", c.Request.URL.Path),
			zap.String("remote_addr", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
		abortJSON(c, http.StatusTooManyRequests, "too many requests")
	}
}
