package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceyewan/shardmanager/clog"
)

// HeaderRequestID 请求 ID 的 HTTP 头
const HeaderRequestID = "X-Request-ID"

// RequestIDKey 请求 ID 在 context 中的键，配合 clog.WithContextField 输出到日志
type RequestIDKey struct{}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey{}).(string)
	return id
}

// RequestID 透传或生成请求 ID，写入响应头和请求 context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey{}, id))
		c.Next()
	}
}

// CORS 允许任意来源访问，预检请求直接返回 204
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderRequestID)
		c.Header("Access-Control-Expose-Headers", HeaderRequestID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AccessLog 每个请求结束后记录一行访问日志
func AccessLog(logger clog.Logger) gin.HandlerFunc {
	logger = logger.WithNamespace("access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []clog.Field{
			clog.String("method", c.Request.Method),
			clog.String("path", c.Request.URL.Path),
			clog.String("route", c.FullPath()),
			clog.Int("status", status),
			clog.Duration("latency", time.Since(start)),
			clog.String("client_ip", c.ClientIP()),
		}

		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "request completed", fields...)
			return
		}
		logger.InfoContext(ctx, "request completed", fields...)
	}
}

// Recovery 捕获 panic，记录日志并返回 500
func Recovery(logger clog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			clog.Any("panic", recovered),
			clog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
