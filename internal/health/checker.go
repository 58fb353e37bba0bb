// Package health 汇总控制台依赖组件的健康状态，供 /readyz 与 /health 使用。
package health

import (
	"context"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 可服务，但部分依赖受损
	StatusUnhealthy Status = "unhealthy" // 不可服务
)

// CheckResult 单项检查结果
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Checker 健康检查器
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// SchemaCounter 报告已加载的报文模板数量
type SchemaCounter interface {
	Len() int
	Names() []string
}

// SchemaChecker 未加载任何模板时不可服务
type SchemaChecker struct {
	schemas SchemaCounter
}

// NewSchemaChecker 创建模板检查器
func NewSchemaChecker(schemas SchemaCounter) *SchemaChecker {
	return &SchemaChecker{schemas: schemas}
}

func (c *SchemaChecker) Name() string { return "schemas" }

func (c *SchemaChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	n := c.schemas.Len()
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{"loaded": n, "names": c.schemas.Names()},
	}
	if n == 0 {
		res.Status = StatusUnhealthy
		res.Message = "no schema loaded"
	}
	res.Latency = time.Since(start)
	return res
}
