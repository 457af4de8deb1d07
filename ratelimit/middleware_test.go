package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/shardmanager/clog"
)

func newTestRouter(t *testing.T, keyFunc func(*gin.Context) string, limit Limit) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter, err := NewStandalone(nil, WithLogger(clog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })

	router := gin.New()
	router.Use(GinMiddleware(limiter, keyFunc, StaticLimit(limit)))
	router.GET("/api/history", func(c *gin.Context) {
		c.JSON(http.StatusOK, []any{})
	})
	return router
}

func doGet(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware_LimitsPerClientIP(t *testing.T) {
	router := newTestRouter(t, nil, Limit{Rate: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, doGet(router, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "192.0.2.1:1234").Code)

	w := doGet(router, "192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	// 另一个客户端有独立的令牌桶
	assert.Equal(t, http.StatusOK, doGet(router, "192.0.2.2:1234").Code)
}

func TestGinMiddleware_EmptyKeyPassesThrough(t *testing.T) {
	router := newTestRouter(t, func(*gin.Context) string { return "" }, Limit{Rate: 0.001, Burst: 1})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.0.2.1:1234").Code)
	}
}

func TestGinMiddleware_InvalidLimitPassesThrough(t *testing.T) {
	router := newTestRouter(t, nil, Limit{})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.0.2.1:1234").Code)
	}
}
