// Package metrics provides Prometheus instrumentation for the simulation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BidsPlaced counts accepted bids, partitioned by side.
	BidsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_bids_placed_total",
		Help: "Total number of bids accepted into the order book",
	}, []string{"side"})

	// BidsRefused counts bids refused before a record was created,
	// partitioned by reason (validation, phase, cutoff).
	BidsRefused = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_bids_refused_total",
		Help: "Total number of bid placements refused without a record",
	}, []string{"reason"})

	// BidsCleared counts clearing outcomes, partitioned by outcome.
	BidsCleared = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_bids_cleared_total",
		Help: "Total number of bids resolved by clearing",
	}, []string{"outcome"})

	// PhaseTransitions counts phase changes, partitioned by direction.
	PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_phase_transitions_total",
		Help: "Total number of simulation phase transitions",
	}, []string{"direction"})

	// CacheLoads counts market data cache load attempts by result.
	CacheLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_cache_loads_total",
		Help: "Market data cache load attempts",
	}, []string{"status"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energytrading_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energytrading_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one HTTP request. Path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func ObserveRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
