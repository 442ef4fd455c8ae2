package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/tracing"
)

// TracingConfig 追踪中间件配置
type TracingConfig struct {
	SkipPaths []string
}

// Tracing 为每个请求创建服务端 span，span 名称使用路由模板
func Tracing(cfg *TracingConfig) gin.HandlerFunc {
	skip := make(map[string]struct{})
	if cfg != nil {
		for _, p := range cfg.SkipPaths {
			skip[p] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		req := c.Request
		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracing.GetTracer().Start(ctx, req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(req.Method),
				semconv.HTTPRoute(route),
				tracing.AttrClientIP.String(c.ClientIP()),
				tracing.AttrRequestID.String(GetRequestID(c)),
			),
		)
		defer span.End()

		c.Request = req.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if claims := GetClaims(c); claims != nil {
			span.SetAttributes(tracing.AttrAccountID.Int64(claims.AccountID), tracing.AttrAccountRole.String(claims.Role))
		}
		for _, e := range c.Errors {
			span.RecordError(e.Err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// GetTraceID 返回当前请求的追踪 ID
func GetTraceID(c *gin.Context) string {
	return tracing.TraceID(c.Request.Context())
}
