// Package metrics holds the Prometheus collectors shared by the proxy server,
// the upstream clients and the bookmark manager.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP server
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviedb_http_request_duration_seconds",
			Help:    "Duration of proxy HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	ProxyActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedb_proxy_actions_total",
			Help: "Total number of proxy actions by endpoint, action and result",
		},
		[]string{"endpoint", "action", "result"}, // result: "ok", "invalid", "error"
	)

	// Upstream clients (tmdb, supabase)
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviedb_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream services in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedb_upstream_errors_total",
			Help: "Total number of failed upstream requests",
		},
		[]string{"service", "error_type"}, // error_type: "transport", "auth", "status", "decode"
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moviedb_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedb_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedb_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Bookmarks
	BookmarkToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedb_bookmark_toggles_total",
			Help: "Total number of bookmark toggles by outcome",
		},
		[]string{"result"}, // result: "added", "removed", "rolled_back"
	)

	BookmarkCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviedb_bookmark_cache_size",
			Help: "Number of bookmarks held in the in-memory cache",
		},
	)

	BookmarkNotifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviedb_bookmark_notifications_total",
			Help: "Total number of subscriber callbacks invoked",
		},
	)

	BookmarkSubscriberPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviedb_bookmark_subscriber_panics_total",
			Help: "Total number of subscriber callbacks that panicked",
		},
	)

	// Local store
	StoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviedb_store_cache_hits_total",
			Help: "Total number of metadata cache hits in the local store",
		},
	)

	StoreCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviedb_store_cache_misses_total",
			Help: "Total number of metadata cache misses in the local store",
		},
	)
)

// RecordHTTPRequest records one served proxy request
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, endpoint, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordUpstream records one request to an upstream service.
// status is 0 when the request never got a response.
func RecordUpstream(service string, status int, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(service, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordUpstreamError counts a failed upstream request
func RecordUpstreamError(service, errorType string) {
	UpstreamErrors.WithLabelValues(service, errorType).Inc()
}

// RecordProxyAction counts one dispatched proxy action
func RecordProxyAction(endpoint, action, result string) {
	ProxyActions.WithLabelValues(endpoint, action, result).Inc()
}

// RecordBookmarkToggle counts one toggle outcome
func RecordBookmarkToggle(result string) {
	BookmarkToggles.WithLabelValues(result).Inc()
}
