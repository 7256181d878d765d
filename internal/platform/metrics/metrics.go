package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts solves by strategy and outcome (ok, partial, failed)
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cvrp_solves_total", Help: "CVRP solves by strategy and outcome."},
		[]string{"strategy", "outcome"},
	)
	// SolveDuration records solver wall time in seconds
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "cvrp_solve_duration_seconds", Help: "CVRP solve duration in seconds.", Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}},
		[]string{"strategy"},
	)
	// SolveRoutes tracks the number of routes per solution
	SolveRoutes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "cvrp_solution_routes", Help: "Routes per CVRP solution.", Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55}},
		[]string{"strategy"},
	)
	// CacheLookups counts solution cache lookups by result (hit, miss, error)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cvrp_solution_cache_lookups_total", Help: "Solution cache lookups by result."},
		[]string{"result"},
	)
)

// ObserveSolve records one finished solve.
func ObserveSolve(strategy, outcome string, dur time.Duration, routes int) {
	Solves.WithLabelValues(strategy, outcome).Inc()
	SolveDuration.WithLabelValues(strategy).Observe(dur.Seconds())
	if routes > 0 {
		SolveRoutes.WithLabelValues(strategy).Observe(float64(routes))
	}
}

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolveRoutes)
		Registry.MustRegister(CacheLookups)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
