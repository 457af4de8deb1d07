package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/shardmanager/xerrors"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "default", cfg: DefaultConfig("shardmanager")},
		{name: "missing service", cfg: &Config{Endpoint: "localhost:4317"}, wantErr: true},
		{name: "missing endpoint", cfg: &Config{ServiceName: "svc"}, wantErr: true},
		{name: "sampler out of range", cfg: &Config{ServiceName: "svc", Endpoint: "x:1", Sampler: 1.5}, wantErr: true},
		{name: "unknown batcher", cfg: &Config{ServiceName: "svc", Endpoint: "x:1", Batcher: "async"}, wantErr: true},
		{name: "simple batcher", cfg: &Config{ServiceName: "svc", Endpoint: "x:1", Batcher: "simple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGinMiddlewareStartsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tp, err := Discard("shardmanager-test")
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var spanCtx oteltrace.SpanContext
	router := gin.New()
	router.Use(GinMiddleware("shardmanager-test", tp))
	router.GET("/api/health", func(c *gin.Context) {
		spanCtx = oteltrace.SpanContextFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, spanCtx.IsValid())
	assert.True(t, spanCtx.IsSampled())
}

func TestGinMiddlewareContinuesIncomingTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tp, err := Discard("shardmanager-test")
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	var got string
	router := gin.New()
	router.Use(GinMiddleware("shardmanager-test", nil))
	router.GET("/api/history", func(c *gin.Context) {
		got = oteltrace.SpanContextFromContext(c.Request.Context()).TraceID().String()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, traceID, got)
}
