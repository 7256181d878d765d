package services

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/platform/metrics"
	"cvrp-route-service/internal/platform/obs"
	"cvrp-route-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SolveRequest struct {
	// Optional; recorded with the run and used to look up stored instances.
	InstanceName string
	Instance     *domain.ProblemInstance
	Strategy     string
}

type SolveResult struct {
	RunID       string
	Fingerprint string
	Solution    *domain.Solution
	TotalCost   float64
	CacheHit    bool
}

// SolveService wraps the solver with caching, metrics and run history.
// Cache and Runs are optional; their failures are logged and never fail a solve.
type SolveService struct {
	Cache ports.SolutionCache
	Runs  ports.SolveRunRepository
	Log   *zap.Logger

	DefaultStrategy string
	Parallelism     int

	now func() time.Time
}

func NewSolveService(cache ports.SolutionCache, runs ports.SolveRunRepository, log *zap.Logger) *SolveService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SolveService{
		Cache:           cache,
		Runs:            runs,
		Log:             log,
		DefaultStrategy: StrategySavingsMerge,
		Parallelism:     2,
		now:             time.Now,
	}
}

// Solve runs one strategy. Partial solutions are returned in the result together with the
// domain error that describes them.
func (s *SolveService) Solve(ctx context.Context, req SolveRequest) (_ *SolveResult, err error) {
	defer obs.Time(ctx, s.Log, "service.Solve")(&err)

	if req.Instance == nil {
		return nil, fmt.Errorf("solve service: %w: instance is required", domain.ErrInvalidInstance)
	}

	name := req.Strategy
	if name == "" {
		name = s.DefaultStrategy
	}
	strategy, err := StrategyByName(name)
	if err != nil {
		return nil, fmt.Errorf("solve service: %w", err)
	}

	fp, err := Fingerprint(req.Instance)
	if err != nil {
		return nil, fmt.Errorf("solve service: %w", err)
	}
	key := CacheKey(strategy.Name(), fp)

	res := &SolveResult{
		RunID:       uuid.NewString(),
		Fingerprint: strconv.FormatUint(fp, 16),
	}

	start := s.clock()
	if sol, ok := s.cached(ctx, key); ok {
		res.Solution = sol
		res.CacheHit = true
	} else {
		res.Solution, err = NewSolver(strategy, s.Log).Solve(ctx, req.Instance)
		if err == nil {
			s.store(ctx, key, res.Solution)
		}
	}
	dur := s.clock().Sub(start)

	if res.Solution != nil {
		total, costErr := res.Solution.Routes.TotalCost(req.Instance)
		if costErr != nil {
			return nil, fmt.Errorf("solve service: total cost: %w", costErr)
		}
		res.TotalCost = total
	}

	outcome := outcomeOf(err)
	metrics.ObserveSolve(strategy.Name(), outcome, dur, routeCount(res.Solution))
	s.record(ctx, req.InstanceName, strategy.Name(), res, outcome, err, dur)

	if res.Solution == nil {
		return nil, fmt.Errorf("solve service: %w", err)
	}
	return res, err
}

// Compare runs the named strategies (all when empty) in parallel.
func (s *SolveService) Compare(ctx context.Context, inst *domain.ProblemInstance, names []string) (_ []StrategyResult, best int, err error) {
	defer obs.Time(ctx, s.Log, "service.Compare")(&err)

	if inst == nil {
		return nil, -1, fmt.Errorf("compare: %w: instance is required", domain.ErrInvalidInstance)
	}

	strategies := Strategies()
	if len(names) > 0 {
		strategies = make([]ConstructionStrategy, 0, len(names))
		for _, n := range names {
			st, err := StrategyByName(n)
			if err != nil {
				return nil, -1, fmt.Errorf("compare: %w", err)
			}
			strategies = append(strategies, st)
		}
	}

	results, best, err := CompareStrategies(ctx, inst, strategies, s.Parallelism, s.Log)
	if err != nil {
		return nil, -1, err
	}

	for _, r := range results {
		metrics.Solves.WithLabelValues(r.Strategy, outcomeOf(r.Err)).Inc()
	}

	return results, best, nil
}

func (s *SolveService) cached(ctx context.Context, key string) (*domain.Solution, bool) {
	if s.Cache == nil {
		return nil, false
	}

	sol, ok, err := s.Cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.Log.Warn("solution cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case !ok:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	default:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return sol, true
	}
}

func (s *SolveService) store(ctx context.Context, key string, sol *domain.Solution) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, key, sol); err != nil {
		s.Log.Warn("solution cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *SolveService) record(
	ctx context.Context,
	instanceName, strategy string,
	res *SolveResult,
	outcome string,
	solveErr error,
	dur time.Duration,
) {
	if s.Runs == nil {
		return
	}

	run := ports.SolveRun{
		ID:           res.RunID,
		InstanceName: instanceName,
		Strategy:     strategy,
		Fingerprint:  res.Fingerprint,
		Outcome:      outcome,
		ErrorKind:    domain.Kind(solveErr),
		Routes:       routeCount(res.Solution),
		TotalCost:    res.TotalCost,
		Duration:     dur,
		CacheHit:     res.CacheHit,
		CreatedAt:    s.clock().UTC(),
	}
	if res.Solution != nil {
		run.Unreachable = len(res.Solution.Unreachable)
	}

	if err := s.Runs.SaveRun(ctx, run); err != nil {
		s.Log.Warn("save solve run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *SolveService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, domain.ErrFleetExhausted) || errors.Is(err, domain.ErrUnreachableCustomer) {
		return "partial"
	}
	return "failed"
}

func routeCount(sol *domain.Solution) int {
	if sol == nil {
		return 0
	}
	return len(sol.Routes)
}
