package ports

import (
	"context"
	"cvrp-route-service/internal/domain"
)

// Port: a cache of solutions for deterministic solves, keyed by instance fingerprint and strategy.
type SolutionCache interface {
	Get(ctx context.Context, key string) (*domain.Solution, bool, error)
	Put(ctx context.Context, key string, sol *domain.Solution) error
}
