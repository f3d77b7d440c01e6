package observability

import (
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	snapshotsTotal  *prometheus.CounterVec
	recomputesTotal prometheus.Counter
	streamClients   prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catatuang_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catatuang_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catatuang_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catatuang_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		snapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catatuang_snapshots_total",
				Help: "Total collection snapshots received from the watcher.",
			},
			[]string{"collection"},
		),
		recomputesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catatuang_report_recomputes_total",
				Help: "Total full dashboard recomputations.",
			},
		),
		streamClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catatuang_stream_clients",
				Help: "Currently connected report stream subscribers.",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catatuang_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrSnapshot increments the snapshot counter for a collection.
func (m *Metrics) IncrSnapshot(collection string) {
	m.snapshotsTotal.WithLabelValues(collection).Inc()
}

// IncrRecompute increments the dashboard recompute counter.
func (m *Metrics) IncrRecompute() {
	m.recomputesTotal.Inc()
}

// StreamClientConnected adjusts the subscriber gauge.
func (m *Metrics) StreamClientConnected()    { m.streamClients.Inc() }
func (m *Metrics) StreamClientDisconnected() { m.streamClients.Dec() }

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetOpsSnapshot returns a snapshot of operational metrics suitable for the
// GET /v1/metrics/summary endpoint.
func (m *Metrics) GetOpsSnapshot() *domain.OpsMetrics {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "dashboard")
	cacheMisses := getCounterValue(m.cacheMisses, "dashboard")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	snapshots := getCounterValue(m.snapshotsTotal, domain.CollectionTransactions) +
		getCounterValue(m.snapshotsTotal, domain.CollectionCategories) +
		getCounterValue(m.snapshotsTotal, domain.CollectionBudgets)

	return &domain.OpsMetrics{
		TotalRequests: int64(totalRequests),
		ErrorRate:     errorRate,
		CacheHitRate:  cacheHitRate,
		SnapshotsSeen: int64(snapshots),
		RecomputesRun: int64(counterValue(m.recomputesTotal)),
		StreamClients: int64(gaugeValue(m.streamClients)),
		Period:        "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
