package observability

import (
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	provisioningTotal *prometheus.CounterVec
	diagnosticsChecks *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
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
				Name:    "bff_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_external_errors_total",
				Help: "Total errors from the managed backend.",
			},
			[]string{"surface"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		provisioningTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_provisioning_total",
				Help: "Account provisioning flows by outcome.",
			},
			[]string{"outcome"},
		),
		diagnosticsChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_diagnostics_checks_total",
				Help: "Diagnostics probe results by status.",
			},
			[]string{"status"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_requests_total",
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

// IncrExternalError increments the error counter for a Supabase surface
// (auth, rest, storage).
func (m *Metrics) IncrExternalError(surface string) {
	m.externalErrors.WithLabelValues(surface).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrProvisioning records one provisioning flow outcome (completed,
// validation_failed, identity_failed, profile_failed, professional_failed).
func (m *Metrics) IncrProvisioning(outcome string) {
	m.provisioningTotal.WithLabelValues(outcome).Inc()
}

// IncrDiagnosticsCheck records one probe result by status.
func (m *Metrics) IncrDiagnosticsCheck(status string) {
	m.diagnosticsChecks.WithLabelValues(status).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetSummary reads the counters back for the GET /v1/metrics/summary
// endpoint. Prometheus counters expose cumulative values.
func (m *Metrics) GetSummary() *domain.MetricsSummary {
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "evaluations")
	cacheMisses := getCounterValue(m.cacheMisses, "evaluations")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	provisioningFailed := getCounterValue(m.provisioningTotal, "identity_failed") +
		getCounterValue(m.provisioningTotal, "profile_failed") +
		getCounterValue(m.provisioningTotal, "professional_failed")

	return &domain.MetricsSummary{
		TotalRequests:         int64(totalRequests),
		ErrorRate:             errorRate,
		CacheHitRate:          cacheHitRate,
		ProvisioningCompleted: int64(getCounterValue(m.provisioningTotal, "completed")),
		ProvisioningFailed:    int64(provisioningFailed),
		ValidationRejections:  int64(getCounterValue(m.provisioningTotal, "validation_failed")),
		DiagnosticsWarnings:   int64(getCounterValue(m.diagnosticsChecks, "warning")),
		DiagnosticsErrors:     int64(getCounterValue(m.diagnosticsChecks, "error")),
		Period:                "all_time",
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
