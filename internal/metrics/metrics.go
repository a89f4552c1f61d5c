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

	// Domain metrics
	fetchTotal       *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	staleDropped     *prometheus.CounterVec
	shareLinkUpdates *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
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

	r.fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsview_fetch_total",
			Help: "Total number of markets API fetches by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)
	r.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketsview_fetch_duration_seconds",
			Help:    "Markets API fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)
	r.staleDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsview_stale_results_dropped_total",
			Help: "Fetch results discarded because a newer refresh superseded them",
		},
		[]string{"resource"},
	)
	r.shareLinkUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsview_share_link_updates_total",
			Help: "Total number of share link publications by page kind",
		},
		[]string{"page"},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketsview_sessions_active",
			Help: "Number of live page sessions",
		},
	)

	reg.MustRegister(r.fetchTotal)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.staleDropped)
	reg.MustRegister(r.shareLinkUpdates)
	reg.MustRegister(r.sessionsActive)

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

// RecordFetch records a markets API fetch.
func (r *Registry) RecordFetch(resource, outcome string, seconds float64) {
	r.fetchTotal.WithLabelValues(resource, outcome).Inc()
	r.fetchDuration.WithLabelValues(resource).Observe(seconds)
}

// RecordStaleDropped counts a fetch result discarded as superseded.
func (r *Registry) RecordStaleDropped(resource string) {
	r.staleDropped.WithLabelValues(resource).Inc()
}

// RecordShareLinkUpdate counts a share link publication.
func (r *Registry) RecordShareLinkUpdate(page string) {
	r.shareLinkUpdates.WithLabelValues(page).Inc()
}

// SetSessionsActive sets the number of live sessions.
func (r *Registry) SetSessionsActive(count int) {
	r.sessionsActive.Set(float64(count))
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
