package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk catalog API.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	packSyncFailed  prometheus.Counter
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	packSync := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pack_price_sync_failures_total",
		Help: "Pack price synchronizations that failed after a committed pack mutation.",
	})
	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_price_proxy_requests_total",
		Help: "Resolved price proxy calls by upstream status code (0 for transport errors).",
	}, []string{"code"})
	upstreamLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_price_proxy_duration_seconds",
		Help:    "Latency of resolved price proxy calls.",
		Buckets: prometheus.DefBuckets,
	})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_listing_cache_lookups_total",
		Help: "Product listing cache lookups by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, packSync, upstream, upstreamLatency, cache)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		packSyncFailed:  packSync,
		upstreamTotal:   upstream,
		upstreamLatency: upstreamLatency,
		cacheLookups:    cache,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// PackSyncFailed counts a swallowed pack price synchronization failure.
func (m *Metrics) PackSyncFailed() {
	if m == nil {
		return
	}
	m.packSyncFailed.Inc()
}

// ObserveUpstream records one call to the resolved price view.
func (m *Metrics) ObserveUpstream(status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	m.upstreamLatency.Observe(elapsed.Seconds())
}

// CacheResult records a listing cache hit or miss.
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
