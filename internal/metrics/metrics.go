package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Aggregation metrics
	providerRequests  *prometheus.CounterVec
	providerDuration  *prometheus.HistogramVec
	providerRetries   *prometheus.CounterVec
	cascadeFallbacks  *prometheus.CounterVec
	cascadeExhausted  *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	refinementResults *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Aggregation metrics
	r.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_provider_requests_total",
			Help: "Total provider fetches by capability and outcome",
		},
		[]string{"provider", "capability", "status"},
	)
	r.providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cryptobuddy_provider_duration_seconds",
			Help:    "Provider fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "capability"},
	)
	r.providerRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_provider_retries_total",
			Help: "Total retry attempts by provider",
		},
		[]string{"provider", "capability"},
	)
	r.cascadeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_cascade_fallbacks_total",
			Help: "Times a provider failed and the cascade moved on",
		},
		[]string{"capability", "provider"},
	)
	r.cascadeExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_cascade_exhausted_total",
			Help: "Times every provider in a cascade failed",
		},
		[]string{"capability"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_cache_lookups_total",
			Help: "Cache lookups by capability and result",
		},
		[]string{"capability", "result"},
	)
	r.refinementResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptobuddy_refinements_total",
			Help: "Background detail refinements by outcome",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.providerRequests)
	reg.MustRegister(r.providerDuration)
	reg.MustRegister(r.providerRetries)
	reg.MustRegister(r.cascadeFallbacks)
	reg.MustRegister(r.cascadeExhausted)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.refinementResults)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordProviderRequest records one provider fetch outcome.
func (r *Registry) RecordProviderRequest(provider, capability, status string, duration float64) {
	r.providerRequests.WithLabelValues(provider, capability, status).Inc()
	r.providerDuration.WithLabelValues(provider, capability).Observe(duration)
}

// RecordProviderRetry records one retry attempt.
func (r *Registry) RecordProviderRetry(provider, capability string) {
	r.providerRetries.WithLabelValues(provider, capability).Inc()
}

// RecordCascadeFallback records a provider failure that advanced the cascade.
func (r *Registry) RecordCascadeFallback(capability, provider string) {
	r.cascadeFallbacks.WithLabelValues(capability, provider).Inc()
}

// RecordCascadeExhausted records a fully failed cascade.
func (r *Registry) RecordCascadeExhausted(capability string) {
	r.cascadeExhausted.WithLabelValues(capability).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(capability string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(capability, result).Inc()
}

// RecordRefinement records a background refinement outcome.
func (r *Registry) RecordRefinement(status string) {
	r.refinementResults.WithLabelValues(status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
