package api

import (
	"github.com/gin-gonic/gin"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/internal/history"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/ratelimit"
	"github.com/ceyewan/shardmanager/trace"
)

// RouterOptions 路由依赖，可选项为空时对应的中间件不启用
type RouterOptions struct {
	Store       history.Store
	Logger      clog.Logger
	StaticDir   string
	ServiceName string

	// TracerProvider 非空时启用 otelgin
	TracerProvider oteltrace.TracerProvider
	// HTTPMetrics 非空时记录 HTTP RED 指标
	HTTPMetrics *metrics.HTTPServerMetrics
	// Limiter 非空时按客户端 IP 限流
	Limiter ratelimit.Limiter
	Limit   ratelimit.Limit
}

// NewRouter 组装中间件和路由
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = clog.Discard()
	}

	r := gin.New()
	r.Use(Recovery(logger))
	r.Use(RequestID())
	if opts.TracerProvider != nil {
		r.Use(trace.GinMiddleware(opts.ServiceName, opts.TracerProvider))
	}
	if opts.HTTPMetrics != nil {
		r.Use(metrics.GinHTTPMiddleware(opts.HTTPMetrics))
	}
	r.Use(AccessLog(logger))
	r.Use(CORS())
	if opts.Limiter != nil {
		r.Use(ratelimit.GinMiddleware(opts.Limiter, nil, ratelimit.StaticLimit(opts.Limit)))
	}

	h := NewHandler(opts.Store, logger, opts.StaticDir)
	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/", h.Index)

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/history", h.ListHistory)
	api.POST("/history", h.CreateHistory)
	api.DELETE("/history/clear", h.ClearHistory)
	api.DELETE("/history/:id", h.DeleteHistory)
}
