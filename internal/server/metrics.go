package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/scrawl/pkg/observability"
)

// =============================================================================
// Metrics
// =============================================================================

var (
	generateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrawl_generate_total",
		Help: "Generate stage completions by diagram type and outcome.",
	}, []string{"type", "outcome"})

	generateSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrawl_generate_duration_seconds",
		Help:    "Generate stage latency, including the model round trip.",
		Buckets: prometheus.DefBuckets,
	})

	generateTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrawl_generate_tokens_total",
		Help: "Model tokens consumed by successful generate calls.",
	})

	layoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrawl_layout_total",
		Help: "Layout stage completions by diagram type and outcome.",
	}, []string{"type", "outcome"})

	layoutSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrawl_layout_duration_seconds",
		Help:    "Layout stage latency.",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	})

	exportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrawl_export_total",
		Help: "Export stage completions by outcome.",
	}, []string{"outcome"})

	exportSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scrawl_export_duration_seconds",
		Help:    "Export stage latency across all requested formats.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
	})

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrawl_cache_ops_total",
		Help: "Cache operations by key type and result.",
	}, []string{"key_type", "op"})

	cacheStoredBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrawl_cache_stored_bytes_total",
		Help: "Bytes written to the cache.",
	})

	upstreamSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrawl_upstream_request_duration_seconds",
		Help:    "Latency of outgoing model API requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"host", "status"})

	upstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scrawl_upstream_errors_total",
		Help: "Outgoing model API requests that failed before a response arrived.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scrawl_http_requests_total",
		Help: "HTTP requests served by method, route, and status.",
	}, []string{"method", "route", "status"})

	httpSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrawl_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// =============================================================================
// Hook Implementation
// =============================================================================

// promHooks publishes pipeline, cache, and upstream HTTP events as
// Prometheus metrics in the default registry.
type promHooks struct{}

func (promHooks) OnGenerateStart(context.Context, string) {}

func (promHooks) OnGenerateComplete(_ context.Context, diagramType string, _, tokens int, d time.Duration, err error) {
	generateTotal.WithLabelValues(diagramType, outcome(err)).Inc()
	generateSeconds.Observe(d.Seconds())
	if err == nil {
		generateTokens.Add(float64(tokens))
	}
}

func (promHooks) OnLayoutStart(context.Context, string, int) {}

func (promHooks) OnLayoutComplete(_ context.Context, diagramType string, d time.Duration, err error) {
	layoutTotal.WithLabelValues(diagramType, outcome(err)).Inc()
	layoutSeconds.Observe(d.Seconds())
}

func (promHooks) OnExportStart(context.Context, []string) {}

func (promHooks) OnExportComplete(_ context.Context, _ []string, d time.Duration, err error) {
	exportTotal.WithLabelValues(outcome(err)).Inc()
	exportSeconds.Observe(d.Seconds())
}

func (promHooks) OnCacheHit(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (promHooks) OnCacheMiss(_ context.Context, keyType string) {
	cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (promHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	cacheOps.WithLabelValues(keyType, "set").Inc()
	cacheStoredBytes.Add(float64(size))
}

func (promHooks) OnRequest(context.Context, string, string, string) {}

func (promHooks) OnResponse(_ context.Context, _, host, _ string, statusCode int, d time.Duration) {
	upstreamSeconds.WithLabelValues(host, strconv.Itoa(statusCode)).Observe(d.Seconds())
}

func (promHooks) OnError(context.Context, string, string, string, error) {
	upstreamErrors.Inc()
}

// RegisterMetrics routes pipeline, cache, and upstream HTTP events into
// Prometheus. Safe to call more than once.
func RegisterMetrics() {
	h := promHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
