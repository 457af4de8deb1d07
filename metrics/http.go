package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/shardmanager/xerrors"
)

const (
	MetricHTTPServerRequestTotal    = "http_server_requests_total"
	MetricHTTPServerDurationSeconds = "http_server_request_duration_seconds"
)

// 历史记录接口都是单条 SQLite 语句，耗时集中在毫秒级
var defaultHTTPDurationBuckets = []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HTTPOption HTTP 指标选项
type HTTPOption func(*httpOptions)

type httpOptions struct {
	buckets      []float64
	staticLabels []Label
}

// WithDurationBuckets 覆盖请求耗时直方图的桶边界
func WithDurationBuckets(buckets []float64) HTTPOption {
	return func(o *httpOptions) {
		o.buckets = buckets
	}
}

// WithStaticLabels 为每条 HTTP 指标追加固定标签
func WithStaticLabels(labels ...Label) HTTPOption {
	return func(o *httpOptions) {
		o.staticLabels = append(o.staticLabels, labels...)
	}
}

// HTTPServerMetrics HTTP 服务端 RED 指标：请求数和耗时
type HTTPServerMetrics struct {
	service      string
	requestTotal Counter
	duration     Histogram
	staticLabels []Label
}

// NewHTTPServerMetrics 在 m 上注册 HTTP 服务端指标
func NewHTTPServerMetrics(m Meter, service string, opts ...HTTPOption) (*HTTPServerMetrics, error) {
	if m == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "meter is nil")
	}

	o := httpOptions{buckets: defaultHTTPDurationBuckets}
	for _, opt := range opts {
		opt(&o)
	}

	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}

	counter, err := m.Counter(MetricHTTPServerRequestTotal, "Total number of HTTP requests.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request counter")
	}
	duration, err := m.Histogram(MetricHTTPServerDurationSeconds, "HTTP request duration in seconds.",
		WithUnit("s"), WithBuckets(o.buckets))
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request duration histogram")
	}

	return &HTTPServerMetrics{
		service:      service,
		requestTotal: counter,
		duration:     duration,
		staticLabels: append([]Label(nil), o.staticLabels...),
	}, nil
}

// Observe 记录一次请求；route 应为路由模板而不是原始路径
func (m *HTTPServerMetrics) Observe(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if route = strings.TrimSpace(route); route == "" {
		route = UnknownRoute
	}

	labels := make([]Label, 0, len(m.staticLabels)+6)
	labels = append(labels, m.staticLabels...)
	labels = append(labels,
		L(LabelService, m.service),
		L(LabelOperation, OperationHTTPServer),
		L(LabelMethod, method),
		L(LabelRoute, route),
		L(LabelStatusClass, HTTPStatusClass(status)),
		L(LabelOutcome, HTTPOutcome(status)),
	)

	m.requestTotal.Inc(ctx, labels...)
	m.duration.Record(ctx, elapsed.Seconds(), labels...)
}

// GinHTTPMiddleware 用 c.FullPath() 作为 route 标签记录请求指标
//
// 未命中的路径统一记为 unknown，避免原始 URL 带来高基数。
func GinHTTPMiddleware(m *HTTPServerMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Observe(c.Request.Context(), c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
