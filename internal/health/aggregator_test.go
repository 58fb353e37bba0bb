package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{Status: m.status, Message: "mock", Latency: time.Millisecond}
}

// 阻塞直到超时
type slowChecker struct{}

func (slowChecker) Name() string { return "slow" }

func (slowChecker) Check(ctx context.Context) CheckResult {
	<-ctx.Done()
	return CheckResult{Status: StatusUnhealthy, Message: ctx.Err().Error()}
}

type fakeSchemas []string

func (f fakeSchemas) Len() int        { return len(f) }
func (f fakeSchemas) Names() []string { return f }

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		checks []Checker
		want   Status
		ready  bool
	}{
		{"全部健康", []Checker{&mockChecker{"schemas", StatusHealthy}, &mockChecker{"redis", StatusHealthy}}, StatusHealthy, true},
		{"部分降级", []Checker{&mockChecker{"schemas", StatusHealthy}, &mockChecker{"redis", StatusDegraded}}, StatusDegraded, true},
		{"部分不健康", []Checker{&mockChecker{"schemas", StatusUnhealthy}, &mockChecker{"redis", StatusDegraded}}, StatusUnhealthy, false},
		{"无检查项", nil, StatusHealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.checks...)
			assert.Equal(t, tt.want, agg.OverallStatus(ctx))
			assert.Equal(t, tt.ready, agg.Ready(ctx))
		})
	}

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"initial", StatusHealthy})
		agg.AddChecker(&mockChecker{"added", StatusHealthy})
		assert.Len(t, agg.CheckAll(ctx), 2)
	})

	t.Run("单项超时", func(t *testing.T) {
		agg := NewAggregator(slowChecker{}).WithTimeout(20 * time.Millisecond)
		res := agg.CheckAll(ctx)
		assert.Equal(t, StatusUnhealthy, res["slow"].Status)
		assert.Equal(t, context.DeadlineExceeded.Error(), res["slow"].Message)
	})
}

func TestSchemaChecker(t *testing.T) {
	ctx := context.Background()

	res := NewSchemaChecker(fakeSchemas{"hour", "keepalive"}).Check(ctx)
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, 2, res.Details["loaded"])

	res = NewSchemaChecker(fakeSchemas{}).Check(ctx)
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "no schema loaded", res.Message)
}

func TestRegisterHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(schemas fakeSchemas, path string) *httptest.ResponseRecorder {
		r := gin.New()
		RegisterHTTPRoutes(r, NewAggregator(NewSchemaChecker(schemas)))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("存活", func(t *testing.T) {
		w := serve(nil, "/health/live")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"alive":true}`, w.Body.String())
	})

	t.Run("健康报告", func(t *testing.T) {
		w := serve(fakeSchemas{"hour"}, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var report HealthReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, StatusHealthy, report.Status)
		assert.Contains(t, report.Checks, "schemas")
	})

	t.Run("未加载模板", func(t *testing.T) {
		w := serve(fakeSchemas{}, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
