package api

import (
	"cvrp-route-service/internal/api/handlers"
	"cvrp-route-service/internal/platform/metrics"
	"cvrp-route-service/internal/ports"
	"cvrp-route-service/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the ports and services the HTTP layer needs. Runs and Matrix may be nil.
type Deps struct {
	Service   *services.SolveService
	Instances ports.InstanceRepository
	Runs      ports.SolveRunRepository
	Matrix    ports.MatrixSource
	Log       *zap.Logger

	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	solveHandler := &handlers.SolveHandler{
		Service:   d.Service,
		Instances: d.Instances,
		Matrix:    d.Matrix,
	}
	instanceHandler := &handlers.InstanceHandler{
		Repo:    d.Instances,
		RunRepo: d.Runs,
		Matrix:  d.Matrix,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/solve", solveHandler.Solve)
	mux.HandleFunc("/compare", solveHandler.Compare)
	mux.HandleFunc("/instances", instanceHandler.Collection)
	mux.HandleFunc("/instances/{name}/runs", instanceHandler.Runs)

	var h http.Handler = mux
	h = rateLimitMiddleware(d.RateLimitRPS, d.RateLimitBurst, h)
	h = loggingMiddleware(h)
	return requestIDMiddleware(d.Log, h)
}
