// Package metrics 提供 Prometheus 指标收集
//
// 每个 Metrics 持有独立的注册表，记录方法在接收者为 nil 时为空操作，
// 未启用监控时服务直接持有 nil 即可。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics 指标收集器
type Metrics struct {
	registry *prometheus.Registry
	path     string

	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	httpInFlight      prometheus.Gauge
	cacheLookups      *prometheus.CounterVec
	mqttMessages      *prometheus.CounterVec
	ordersCreated     *prometheus.CounterVec
	orderTransitions  *prometheus.CounterVec
	orderNumberRetry  prometheus.Counter
	paymentsProcessed *prometheus.CounterVec
}

// New 创建指标收集器，namespace 为空时使用 kitchen_pos
func New(namespace, path string) *Metrics {
	if namespace == "" {
		namespace = "kitchen_pos"
	}
	if path == "" {
		path = "/metrics"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}

	return &Metrics{
		registry:     reg,
		path:         path,
		httpRequests: counter("http_requests_total", "HTTP requests by route and status", "method", "path", "status"),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   latencyBuckets,
		}, []string{"method", "path"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		cacheLookups:     counter("cache_lookups_total", "Cache lookups by cache and result", "cache", "result"),
		mqttMessages:     counter("mqtt_messages_total", "Kitchen display messages by topic and result", "topic", "result"),
		ordersCreated:    counter("orders_total", "Orders created, by initial status", "status"),
		orderTransitions: counter("order_status_transitions_total", "Order status changes", "from", "to"),
		orderNumberRetry: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_number_retries_total",
			Help:      "Order number collisions that required a retry",
		}),
		paymentsProcessed: counter("payments_total", "Payments by method and status", "method", "status"),
	}
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware 按路由模板统计请求量与耗时，跳过指标端点自身
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == m.path {
			c.Next()
			return
		}

		m.httpInFlight.Inc()
		start := time.Now()
		c.Next()
		m.httpInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露注册表内容
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}

func (m *Metrics) RecordCacheHit(cache string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(cache, "hit").Inc()
	}
}

func (m *Metrics) RecordCacheMiss(cache string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(cache, "miss").Inc()
	}
}

// RecordMQTTMessage result 取 ok 或 error
func (m *Metrics) RecordMQTTMessage(topic, result string) {
	if m != nil {
		m.mqttMessages.WithLabelValues(topic, result).Inc()
	}
}

func (m *Metrics) RecordOrder(status string) {
	if m != nil {
		m.ordersCreated.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) RecordOrderTransition(from, to string) {
	if m != nil {
		m.orderTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) RecordOrderNumberRetry() {
	if m != nil {
		m.orderNumberRetry.Inc()
	}
}

func (m *Metrics) RecordPayment(method, status string) {
	if m != nil {
		m.paymentsProcessed.WithLabelValues(method, status).Inc()
	}
}
