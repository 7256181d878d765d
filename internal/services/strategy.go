package services

import (
	"cvrp-route-service/internal/domain"
	"errors"
	"fmt"
	"strings"
)

const (
	StrategyNearestNeighbor = "nearest-neighbor"
	StrategySavingsMerge    = "savings-merge"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// ConstructionStrategy builds a capacity-feasible route set for an instance.
//
// Customers that can never be routed are reported through a *domain.UnreachableError
// returned alongside the routes for everyone else.
type ConstructionStrategy interface {
	Name() string
	Build(inst *domain.ProblemInstance) (domain.RouteSet, error)
}

// NearestNeighbor is the greedy one-route-at-a-time construction.
type NearestNeighbor struct{}

func (NearestNeighbor) Name() string { return StrategyNearestNeighbor }

func (NearestNeighbor) Build(inst *domain.ProblemInstance) (domain.RouteSet, error) {
	routes, unreachable, err := NearestNeighborRoutes(inst)
	if err != nil {
		return nil, err
	}
	return routes, domain.NewUnreachableError(unreachable, inst.Capacity())
}

// SavingsMerge is the single-pass Clarke-Wright savings heuristic.
type SavingsMerge struct{}

func (SavingsMerge) Name() string { return StrategySavingsMerge }

func (SavingsMerge) Build(inst *domain.ProblemInstance) (domain.RouteSet, error) {
	savings, err := ComputeSavings(inst)
	if err != nil {
		return nil, err
	}

	merger, unreachable, err := NewRouteMerger(inst)
	if err != nil {
		return nil, err
	}
	merger.MergeAll(savings)

	return merger.Routes(), domain.NewUnreachableError(unreachable, inst.Capacity())
}

// Strategies lists every available construction strategy in a fixed order.
func Strategies() []ConstructionStrategy {
	return []ConstructionStrategy{NearestNeighbor{}, SavingsMerge{}}
}

func StrategyByName(name string) (ConstructionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyNearestNeighbor:
		return NearestNeighbor{}, nil
	case StrategySavingsMerge:
		return SavingsMerge{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
