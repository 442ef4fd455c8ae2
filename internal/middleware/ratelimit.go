package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/cache"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Store   *cache.Store
	Scope   string // 键的业务前缀，如 login
	Limit   int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
}

// RateLimit 固定窗口限流，Redis 不可用时放行
func RateLimit(cfg *RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Store.Enabled() || cfg.Limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if cfg.KeyFunc != nil {
			subject = cfg.KeyFunc(c)
		}
		key := cache.BuildKey(cache.KeyPrefixRateLimit, cfg.Scope, subject)

		count, err := cfg.Store.Incr(c.Request.Context(), key, cfg.Window)
		if err != nil {
			logger.Warn("rate limit store unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		if int(count) > cfg.Limit {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-int(count)))

		c.Next()
	}
}

// AccountRateLimit 已登录账号按账号限流，否则按 IP
func AccountRateLimit(store *cache.Store, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Store:  store,
		Scope:  scope,
		Limit:  limit,
		Window: window,
		KeyFunc: func(c *gin.Context) string {
			if id := GetAccountID(c); id > 0 {
				return "account:" + strconv.FormatInt(id, 10)
			}
			return "ip:" + c.ClientIP()
		},
	})
}
