package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/redis"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的写接口限流
// 已认证请求按 user_id 计数，否则按客户端 IP；GET / HEAD / OPTIONS 不计数。
// rdb 为 nil 时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || !isWrite(c.Request.Method) {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s %s", rateLimitSubject(c), c.Request.Method, c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func rateLimitSubject(c *gin.Context) string {
	if uid := c.GetInt64(ctxUserID); uid > 0 {
		return fmt.Sprintf("user:%d", uid)
	}
	return "ip:" + c.ClientIP()
}
