package observability

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/sdgraph-backend/internal/pkg/logger"
)

// Metrics is nil-safe: every method is a no-op on a nil receiver, which is
// what callers get when metrics are disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	upserts         *prometheus.CounterVec
	finalizes       *prometheus.CounterVec
	finalizeLatency *prometheus.HistogramVec
	finalizeRecords prometheus.Histogram

	importRuns   *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	projections  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdgraph_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "sdgraph_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		upserts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_ingest_upserts_total",
			Help: "Upserts by kind and outcome (created/existing).",
		}, []string{"kind", "outcome"}),
		finalizes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_ingest_finalize_total",
			Help: "Session finalizations by outcome.",
		}, []string{"outcome"}),
		finalizeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sdgraph_ingest_finalize_duration_seconds",
			Help:    "Session finalization latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		finalizeRecords: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sdgraph_ingest_finalize_records",
			Help:    "Pending records written per finalization.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		importRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_import_runs_total",
			Help: "Bulk imports by format and status.",
		}, []string{"format", "status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_graph_cache_lookups_total",
			Help: "Graph payload cache lookups by layer and result.",
		}, []string{"layer", "result"}),
		projections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sdgraph_graph_projection_total",
			Help: "Neo4j projection runs by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on a separate listener until ctx is done. It is
// a no-op when m is nil or addr is empty.
func (m *Metrics) Serve(ctx context.Context, log *logger.Logger, addr string) error {
	if m == nil {
		return nil
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	if log != nil {
		log.Info("metrics server listening", "addr", addr)
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveUpsert and ObserveFinalize make Metrics an ingest.Observer.
func (m *Metrics) ObserveUpsert(kind string, created bool) {
	if m == nil {
		return
	}
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.upserts.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveFinalize(outcome string, records int, took time.Duration) {
	if m == nil {
		return
	}
	m.finalizes.WithLabelValues(outcome).Inc()
	m.finalizeLatency.WithLabelValues(outcome).Observe(took.Seconds())
	if records > 0 {
		m.finalizeRecords.Observe(float64(records))
	}
}

func (m *Metrics) ObserveImport(format, status string) {
	if m == nil {
		return
	}
	m.importRuns.WithLabelValues(format, status).Inc()
}

func (m *Metrics) ObserveCache(layer string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}

func (m *Metrics) ObserveProjection(status string) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(status).Inc()
}
