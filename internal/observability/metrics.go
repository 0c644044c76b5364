package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Geocoding API call rate. Watch for: error vs success ratio.
	GeocodeAPICallsTotal *prometheus.CounterVec

	// Geocoding API latency. Watch for: p95 > 2s (upstream degradation).
	GeocodeAPIDuration *prometheus.HistogramVec

	// Forecast API call rate. Watch for: error vs success ratio.
	ForecastAPICallsTotal *prometheus.CounterVec

	// Forecast API latency. Watch for: p95 > 2s (upstream degradation).
	ForecastAPIDuration *prometheus.HistogramVec

	// Total search actions (submitted queries plus location requests).
	SearchesTotal prometheus.Counter

	// Search actions ending in the error state, by kind.
	SearchErrorsTotal *prometheus.CounterVec

	// Unit toggle invocations by selected system.
	UnitSelectionsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	GeocodeAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocodeApiCallsTotal",
			Help: "Total number of geocoding API calls",
		},
		[]string{"status"},
	)
	GeocodeAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geocodeApiDurationSeconds",
			Help:    "Geocoding API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	ForecastAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastApiCallsTotal",
			Help: "Total number of forecast API calls",
		},
		[]string{"status"},
	)
	ForecastAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastApiDurationSeconds",
			Help:    "Forecast API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	SearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "searchesTotal",
			Help: "Total number of search actions (queries and location requests)",
		},
	)
	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchErrorsTotal",
			Help: "Search actions that ended in the error state, by kind",
		},
		[]string{"kind"},
	)
	UnitSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unitSelectionsTotal",
			Help: "Unit system selections by target system",
		},
		[]string{"units"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Requests denied by the inbound rate limiter",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		GeocodeAPICallsTotal,
		GeocodeAPIDuration,
		ForecastAPICallsTotal,
		ForecastAPIDuration,
		SearchesTotal,
		SearchErrorsTotal,
		UnitSelectionsTotal,
		RateLimitDeniedTotal,
	)
}

// MetricsHandler returns the /metrics endpoint handler bound to the private registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StatusLabel maps an HTTP status code to a stable metric label.
func StatusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
