package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleet_dashboard"

var (
	// FeedPolls counts vehicle feed polls by result (success, failure).
	FeedPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vehicle_feed_polls_total",
		Help:      "Vehicle feed polls by result",
	}, []string{"result"})

	// FeedFetchDuration observes how long one feed fetch takes.
	FeedFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vehicle_feed_fetch_duration_seconds",
		Help:      "Vehicle feed fetch duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// CachedVehicles reports the size of the current vehicle snapshot.
	CachedVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vehicles_cached",
		Help:      "Vehicles in the current position snapshot",
	})

	// FilterInvocations counts filter engine calls by record kind.
	FilterInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filter_invocations_total",
		Help:      "Filter engine invocations by record kind",
	}, []string{"kind"})

	// HTTPRequests counts served HTTP requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status class",
	}, []string{"method", "status"})

	// RateLimited counts requests rejected by the per-client rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	// HTTPRequestDuration observes request latency by chi route pattern, so
	// ids in the path do not explode the label set.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// StatusClass buckets an HTTP status code into 2xx, 3xx, 4xx or 5xx.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
