// Package tracing 提供 OpenTelemetry 分布式追踪
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
)

const defaultServiceName = "kitchen-pos-backend"

// Config 追踪配置
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string // OTLP gRPC 地址，为空时导出到 Writer
	SampleRate     float64
	Enabled        bool
	Writer         io.Writer
}

// FromConfig 由应用配置构造追踪配置
func FromConfig(cfg *config.TracingConfig, environment string) *Config {
	return &Config{
		ServiceName: cfg.ServiceName,
		Environment: environment,
		Endpoint:    cfg.Endpoint,
		SampleRate:  cfg.SampleRate,
		Enabled:     cfg.Enabled,
	}
}

// Tracer 追踪器；provider 为空表示追踪未启用
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	config   *Config
}

var current atomic.Pointer[Tracer]

// Init 初始化全局追踪器，cfg 为空时按开发环境全量采样
func Init(cfg *Config) (*Tracer, error) {
	if cfg == nil {
		cfg = &Config{Environment: "development", SampleRate: 1, Enabled: true}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	t := &Tracer{config: cfg}
	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(cfg.ServiceName)
		current.Store(t)
		return t, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(samplerFor(cfg.SampleRate))),
	)
	t.tracer = t.provider.Tracer(cfg.ServiceName)

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	current.Store(t)
	return t, nil
}

func newExporter(cfg *Config) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}
		return exp, nil
	}

	exp, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter %s: %w", cfg.Endpoint, err)
	}
	return exp, nil
}

func samplerFor(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	if rate <= 0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}

// GetTracer 返回全局追踪器，未初始化时使用 otel 全局 provider
func GetTracer() *Tracer {
	if t := current.Load(); t != nil {
		return t
	}
	return &Tracer{tracer: otel.Tracer(defaultServiceName)}
}

// Shutdown 刷出未导出的 span
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartSpan 开始一个内部 span
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// End 结束 span，err 非空时记录错误并标记状态
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// TraceID 返回上下文中的追踪 ID，无有效 span 时为空
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// span 属性键
const (
	AttrAccountID    = attribute.Key("account.id")
	AttrAccountRole  = attribute.Key("account.role")
	AttrRequestID    = attribute.Key("request.id")
	AttrClientIP     = attribute.Key("http.client_ip")
	AttrRestaurantID = attribute.Key("restaurant.id")
	AttrOrderID      = attribute.Key("order.id")
	AttrOrderNumber  = attribute.Key("order.number")
	AttrOrderStatus  = attribute.Key("order.status")
)

func WithRestaurantID(id int64) attribute.KeyValue { return AttrRestaurantID.Int64(id) }

func WithOrderID(id int64) attribute.KeyValue { return AttrOrderID.Int64(id) }

func WithOrderNumber(no string) attribute.KeyValue { return AttrOrderNumber.String(no) }

func WithOrderStatus(status string) attribute.KeyValue { return AttrOrderStatus.String(status) }
