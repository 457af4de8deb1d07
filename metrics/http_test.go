package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureCounter struct {
	records [][]Label
}

func (c *captureCounter) Inc(_ context.Context, labels ...Label) {
	c.records = append(c.records, append([]Label(nil), labels...))
}

func (c *captureCounter) Add(ctx context.Context, _ float64, labels ...Label) {
	c.Inc(ctx, labels...)
}

type captureHistogram struct {
	values  []float64
	records [][]Label
}

func (h *captureHistogram) Record(_ context.Context, v float64, labels ...Label) {
	h.values = append(h.values, v)
	h.records = append(h.records, append([]Label(nil), labels...))
}

func labelValue(labels []Label, key string) string {
	for _, label := range labels {
		if label.Key == key {
			return label.Value
		}
	}
	return ""
}

func newCaptureMetrics(static ...Label) (*HTTPServerMetrics, *captureCounter, *captureHistogram) {
	counter := &captureCounter{}
	histogram := &captureHistogram{}
	return &HTTPServerMetrics{
		service:      "shardmanager",
		requestTotal: counter,
		duration:     histogram,
		staticLabels: static,
	}, counter, histogram
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinHTTPMiddlewareUnknownRouteForUnmatchedPath(t *testing.T) {
	m, counter, _ := newCaptureMetrics()

	router := gin.New()
	router.Use(GinHTTPMiddleware(m))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown/scan", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, counter.records, 1)
	assert.Equal(t, UnknownRoute, labelValue(counter.records[0], LabelRoute))
}

func TestGinHTTPMiddlewareUsesRouteTemplate(t *testing.T) {
	m, counter, histogram := newCaptureMetrics()

	router := gin.New()
	router.Use(GinHTTPMiddleware(m))
	router.DELETE("/api/history/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "记录不存在"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/history/42", nil))

	require.Len(t, counter.records, 1)
	require.Len(t, histogram.records, 1)
	labels := counter.records[0]
	assert.Equal(t, "/api/history/:id", labelValue(labels, LabelRoute))
	assert.Equal(t, http.MethodDelete, labelValue(labels, LabelMethod))
	assert.Equal(t, "4xx", labelValue(labels, LabelStatusClass))
	assert.Equal(t, OutcomeError, labelValue(labels, LabelOutcome))
	assert.Equal(t, "shardmanager", labelValue(labels, LabelService))
	assert.Equal(t, OperationHTTPServer, labelValue(labels, LabelOperation))
}

func TestGinHTTPMiddlewareNilMetrics(t *testing.T) {
	router := gin.New()
	router.Use(GinHTTPMiddleware(nil))
	router.GET("/api/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPServerMetricsObserveDefaults(t *testing.T) {
	m, counter, histogram := newCaptureMetrics(L("env", "test"))

	m.Observe(context.Background(), " post ", "", http.StatusCreated, 250*time.Millisecond)

	require.Len(t, counter.records, 1)
	labels := counter.records[0]
	assert.Equal(t, "test", labelValue(labels, "env"))
	assert.Equal(t, http.MethodPost, labelValue(labels, LabelMethod))
	assert.Equal(t, UnknownRoute, labelValue(labels, LabelRoute))
	assert.Equal(t, OutcomeSuccess, labelValue(labels, LabelOutcome))
	assert.InDelta(t, 0.25, histogram.values[0], 1e-9)

	var nilMetrics *HTTPServerMetrics
	nilMetrics.Observe(context.Background(), http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestNewHTTPServerMetrics(t *testing.T) {
	_, err := NewHTTPServerMetrics(nil, "svc")
	require.Error(t, err)

	m, err := NewHTTPServerMetrics(Discard(), "  ",
		WithDurationBuckets([]float64{0.1, 1}),
		WithStaticLabels(L("env", "test")),
	)
	require.NoError(t, err)
	assert.Equal(t, "unknown", m.service)
	assert.Len(t, m.staticLabels, 1)
}
