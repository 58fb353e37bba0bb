package health

import (
	"context"
	"fmt"
	"time"

	redisstore "github.com/novrain/SL-651/internal/storage/redis"
)

// RedisChecker 检查要素取值用的 Redis。
// Redis 不可用时控制台仍可处理内联取值的模板，因此只报告 Degraded。
type RedisChecker struct {
	client  *redisstore.Client
	breaker *redisstore.Breaker
}

// NewRedisChecker 创建 Redis 检查器，breaker 可为 nil
func NewRedisChecker(client *redisstore.Client, breaker *redisstore.Breaker) *RedisChecker {
	return &RedisChecker{client: client, breaker: breaker}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	details := map[string]any{"addr": c.client.Addr()}
	if c.breaker != nil {
		details["breaker"] = c.breaker.Stats()
	}

	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Details: details,
			Latency: time.Since(start),
		}
	}

	stats := c.client.Stats()
	utilization := 0.0
	if stats.TotalConns > 0 {
		utilization = float64(stats.TotalConns-stats.IdleConns) / float64(stats.TotalConns)
	}
	details["total_conns"] = stats.TotalConns
	details["idle_conns"] = stats.IdleConns
	details["timeouts"] = stats.Timeouts
	details["utilization"] = fmt.Sprintf("%.1f%%", utilization*100)

	res := CheckResult{Status: StatusHealthy, Message: "ok", Details: details}
	switch {
	case c.breaker != nil && c.breaker.State() != redisstore.BreakerClosed:
		res.Status = StatusDegraded
		res.Message = "breaker " + c.breaker.State().String()
	case utilization > 0.9:
		res.Status = StatusDegraded
		res.Message = "connection pool near limit"
	}
	res.Latency = time.Since(start)
	return res
}
