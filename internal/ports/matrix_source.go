package ports

import (
	"context"
	"cvrp-route-service/internal/domain"
)

// Port: an external routing engine that turns locations into a dense cost matrix.
type MatrixSource interface {
	// Return cost[i][j] for every ordered pair of points.
	FetchMatrix(ctx context.Context, points []domain.Point) ([][]float64, error)
}

// Persistent pairwise cost cache keyed by normalized location strings.
type CostCache interface {
	// Fetch cached costs for one origin and multiple destinations. Misses are absent from the map.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	// Store many cached costs for a single origin.
	PutMany(ctx context.Context, origin string, costs map[string]float64) error
}
