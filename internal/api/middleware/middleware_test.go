package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	return r
}

func serve(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyAuth(t *testing.T) {
	r := newTestEngine(APIKeyAuth(NewAuthConfig([]string{"sk_test_123456"}), zap.NewNop()))

	tests := []struct {
		name   string
		header map[string]string
		code   int
	}{
		{"缺少Key", nil, http.StatusUnauthorized},
		{"无效Key", map[string]string{"X-API-Key": "nope"}, http.StatusForbidden},
		{"X-API-Key", map[string]string{"X-API-Key": "sk_test_123456"}, http.StatusOK},
		{"Bearer", map[string]string{"Authorization": "Bearer sk_test_123456"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, serve(r, tt.header).Code)
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	r := newTestEngine(APIKeyAuth(NewAuthConfig(nil), zap.NewNop()))
	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk_l****abcd", maskAPIKey("sk_live_xxxxabcd"))
}

func TestRequestID(t *testing.T) {
	r := newTestEngine(RequestID())

	rec := serve(r, map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	rec = serve(r, nil)
	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	l := NewRateLimiter(1, 2)
	r := newTestEngine(RateLimit(l, zap.NewNop()))

	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, nil).Code)

	// 未认证的 Key 不单独成桶，轮换 Key 仍按来源 IP 计数
	for _, key := range []string{"bogus-1", "bogus-2", "bogus-3"} {
		assert.Equal(t, http.StatusTooManyRequests, serve(r, map[string]string{APIKeyHeader: key}).Code)
	}

	stats := l.Stats()
	assert.Equal(t, int64(2), stats.AllowedTotal)
	assert.Equal(t, int64(4), stats.RejectedTotal)
	assert.Equal(t, 1, stats.Clients)
	assert.Equal(t, float64(1), stats.RatePerSecond)
}

func TestRateLimit_AuthenticatedKeys(t *testing.T) {
	l := NewRateLimiter(1, 1)
	r := newTestEngine(
		APIKeyAuth(NewAuthConfig([]string{"sk_test_aaaaaa", "sk_test_bbbbbb"}), zap.NewNop()),
		RateLimit(l, zap.NewNop()),
	)

	a := map[string]string{APIKeyHeader: "sk_test_aaaaaa"}
	b := map[string]string{APIKeyHeader: "sk_test_bbbbbb"}
	assert.Equal(t, http.StatusOK, serve(r, a).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, a).Code)
	// 不同的有效 Key 各自计数
	assert.Equal(t, http.StatusOK, serve(r, b).Code)
	// 无效 Key 在认证阶段被拒，不占用令牌桶
	assert.Equal(t, http.StatusForbidden, serve(r, map[string]string{APIKeyHeader: "sk_test_cccccc"}).Code)

	assert.Equal(t, 2, l.Stats().Clients)
}

func TestRateLimiter_ClientCap(t *testing.T) {
	l := NewRateLimiter(1, 1)
	l.maxClients = 4

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(fmt.Sprintf("client-%d", i)))
		assert.LessOrEqual(t, l.Stats().Clients, 4)
	}
	assert.Equal(t, 4, l.Stats().Clients)

	// 最近访问的客户端保留，令牌已用完
	assert.False(t, l.Allow("client-99"))
}

func TestRateLimit_Unlimited(t *testing.T) {
	r := newTestEngine(RateLimit(NewRateLimiter(0, 0), zap.NewNop()))
	for i := 0; i < 100; i++ {
		assert.Equal(t, http.StatusOK, serve(r, nil).Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestEngine(CORS())
	r.OPTIONS("/ping", func(c *gin.Context) {})
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
