package services

import (
	"context"
	"cvrp-route-service/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StrategyResult is the outcome of one strategy in a comparison.
// Err carries partial-solution errors; Solution may still be set.
type StrategyResult struct {
	Strategy  string
	Solution  *domain.Solution
	TotalCost float64
	Err       error
}

// Feasible reports a complete solution within the fleet limit.
func (r StrategyResult) Feasible() bool { return r.Err == nil && r.Solution != nil }

// CompareStrategies solves the same instance with each strategy concurrently.
//
// Each run owns its own route set; the instance is shared read-only. Results keep the input
// order. best is the index of the cheapest feasible result, or -1 if none is feasible.
// Only context cancellation aborts the comparison.
func CompareStrategies(
	ctx context.Context,
	inst *domain.ProblemInstance,
	strategies []ConstructionStrategy,
	parallelism int,
	log *zap.Logger,
) (results []StrategyResult, best int, err error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results = make([]StrategyResult, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, strategy := range strategies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := StrategyResult{Strategy: strategy.Name()}
			sol, solveErr := NewSolver(strategy, log).Solve(gctx, inst)
			res.Solution = sol
			res.Err = solveErr

			if sol != nil {
				total, err := sol.Routes.TotalCost(inst)
				if err != nil {
					res.Err = fmt.Errorf("compare %s: total cost: %w", strategy.Name(), err)
				}
				res.TotalCost = total
			}

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, -1, fmt.Errorf("compare strategies: %w", err)
	}

	best = -1
	for i, r := range results {
		if !r.Feasible() {
			continue
		}
		if best < 0 || r.TotalCost < results[best].TotalCost {
			best = i
		}
	}

	return results, best, nil
}
