package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
)

// LoggingConfig 访问日志配置，探活路径默认不记录
type LoggingConfig struct {
	Logger    *zap.Logger
	SkipPaths []string
}

// Logging 访问日志，级别随响应状态升高
func Logging(cfg *LoggingConfig) gin.HandlerFunc {
	skip := map[string]struct{}{"/health": {}, "/ping": {}, "/ready": {}}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 10)
		fields = append(fields,
			logger.RequestID(GetRequestID(c)),
			logger.Method(c.Request.Method),
			logger.Path(c.Request.URL.Path),
			zap.Int("status", status),
			logger.Latency(time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if id := GetAccountID(c); id > 0 {
			fields = append(fields, logger.AccountID(id), logger.Role(GetRole(c)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		cfg.Logger.Log(levelFor(status), "http request", fields...)
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
