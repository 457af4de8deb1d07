package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinMiddleware 创建 Gin 限流中间件
//
// 参数:
//   - limiter: 限流器实例
//   - keyFunc: 从请求中提取限流键的函数，为 nil 时使用客户端 IP
//   - limitFunc: 获取限流规则的函数
//
// 无法提取限流键、规则无效或限流器出错时放行请求；
// 被限流时返回 429 {"error": "rate limit exceeded"}。
func GinMiddleware(
	limiter Limiter,
	keyFunc func(*gin.Context) string,
	limitFunc func(*gin.Context) Limit,
) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		limit := limitFunc(c)
		if limit.Rate <= 0 || limit.Burst <= 0 {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// StaticLimit 返回固定规则的 limitFunc
func StaticLimit(limit Limit) func(*gin.Context) Limit {
	return func(*gin.Context) Limit {
		return limit
	}
}
