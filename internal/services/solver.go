package services

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/platform/obs"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Solver runs one construction strategy and enforces the result's post-conditions.
type Solver struct {
	strategy ConstructionStrategy
	log      *zap.Logger
}

func NewSolver(strategy ConstructionStrategy, log *zap.Logger) *Solver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Solver{strategy: strategy, log: log}
}

func (s *Solver) Strategy() string { return s.strategy.Name() }

// Solve builds and validates a route set.
//
// A non-nil Solution is returned together with the error when the solve is partial: customers
// with demand above capacity (domain.ErrUnreachableCustomer) or more routes than vehicles
// (domain.ErrFleetExhausted). Both may be reported at once. Routes are never truncated.
func (s *Solver) Solve(ctx context.Context, inst *domain.ProblemInstance) (_ *domain.Solution, err error) {
	defer obs.Time(ctx, s.log, "solver.Solve")(&err)

	if inst == nil {
		return nil, fmt.Errorf("solve: %w: instance is nil", domain.ErrInvalidInstance)
	}

	name := s.strategy.Name()

	routes, buildErr := s.strategy.Build(inst)

	var unreachableErr *domain.UnreachableError
	var unreachable []domain.NodeID
	if buildErr != nil {
		if !errors.As(buildErr, &unreachableErr) {
			return nil, fmt.Errorf("solve %s: build: %w", name, buildErr)
		}
		unreachable = unreachableErr.Nodes
	}

	if err := ValidateRoutes(inst, routes, unreachable); err != nil {
		s.log.Error("construction violated post-conditions", zap.String("strategy", name), zap.Error(err))
		return nil, fmt.Errorf("solve %s: %w", name, err)
	}

	sol := &domain.Solution{
		Strategy:    name,
		Routes:      routes,
		Unreachable: unreachable,
	}

	var problems []error
	if unreachableErr != nil {
		problems = append(problems, unreachableErr)
	}
	if len(routes) > inst.FleetSize() {
		problems = append(problems, &domain.FleetExhaustedError{Routes: len(routes), FleetSize: inst.FleetSize()})
	}

	if len(problems) > 0 {
		s.log.Info("partial solution",
			zap.String("strategy", name),
			zap.Int("routes", len(routes)),
			zap.Int("fleet_size", inst.FleetSize()),
			zap.Int("unreachable", len(unreachable)),
		)
	}

	return sol, errors.Join(problems...)
}
