package services

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/ports"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolutionCache struct {
	mu      sync.Mutex
	m       map[string]*domain.Solution
	getErr  error
	puts    int
	lastKey string
}

func (c *fakeSolutionCache) Get(_ context.Context, key string) (*domain.Solution, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	sol, ok := c.m[key]
	return sol, ok, nil
}

func (c *fakeSolutionCache) Put(_ context.Context, key string, sol *domain.Solution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]*domain.Solution{}
	}
	c.m[key] = sol
	c.puts++
	c.lastKey = key
	return nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []ports.SolveRun
	err  error
}

func (r *fakeRunRepo) SaveRun(_ context.Context, run ports.SolveRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRunRepo) ListRuns(_ context.Context, name string, limit int) ([]ports.SolveRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.SolveRun(nil), r.runs...), nil
}

func TestSolveServiceCachesSuccessfulSolves(t *testing.T) {
	cache := &fakeSolutionCache{}
	runs := &fakeRunRepo{}
	svc := NewSolveService(cache, runs, nil)

	req := SolveRequest{InstanceName: "reference", Instance: referenceInstance(t, 3), Strategy: StrategyNearestNeighbor}

	first, err := svc.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 85.0, first.TotalCost)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 1, cache.puts)

	second, err := svc.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Solution, second.Solution)
	assert.Equal(t, 85.0, second.TotalCost)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 1, cache.puts)

	require.Len(t, runs.runs, 2)
	assert.Equal(t, "reference", runs.runs[0].InstanceName)
	assert.Equal(t, "ok", runs.runs[0].Outcome)
	assert.Equal(t, "none", runs.runs[0].ErrorKind)
	assert.Equal(t, 3, runs.runs[0].Routes)
	assert.False(t, runs.runs[0].CacheHit)
	assert.True(t, runs.runs[1].CacheHit)
	assert.Equal(t, first.Fingerprint, runs.runs[1].Fingerprint)
}

func TestSolveServicePartialSolutionsAreNotCached(t *testing.T) {
	cache := &fakeSolutionCache{}
	runs := &fakeRunRepo{}
	svc := NewSolveService(cache, runs, nil)

	res, err := svc.Solve(context.Background(), SolveRequest{Instance: referenceInstance(t, 2)})
	require.ErrorIs(t, err, domain.ErrFleetExhausted)
	require.NotNil(t, res)
	assert.Equal(t, StrategySavingsMerge, res.Solution.Strategy)
	assert.Len(t, res.Solution.Routes, 3)
	assert.Equal(t, 105.0, res.TotalCost)
	assert.Equal(t, 0, cache.puts)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, "partial", runs.runs[0].Outcome)
	assert.Equal(t, "fleet_exhausted", runs.runs[0].ErrorKind)
}

func TestSolveServiceToleratesBrokenCollaborators(t *testing.T) {
	cache := &fakeSolutionCache{getErr: errors.New("redis down")}
	runs := &fakeRunRepo{err: errors.New("db down")}
	svc := NewSolveService(cache, runs, nil)

	res, err := svc.Solve(context.Background(), SolveRequest{Instance: referenceInstance(t, 3)})
	require.NoError(t, err)
	assert.Len(t, res.Solution.Routes, 3)
}

func TestSolveServiceRejectsBadRequests(t *testing.T) {
	svc := NewSolveService(nil, nil, nil)

	_, err := svc.Solve(context.Background(), SolveRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)

	_, err = svc.Solve(context.Background(), SolveRequest{Instance: referenceInstance(t, 3), Strategy: "simulated-annealing"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSolveServiceCompare(t *testing.T) {
	svc := NewSolveService(nil, nil, nil)

	results, best, err := svc.Compare(context.Background(), referenceInstance(t, 3), []string{StrategySavingsMerge})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, best)
	assert.Equal(t, StrategySavingsMerge, results[0].Strategy)

	_, _, err = svc.Compare(context.Background(), referenceInstance(t, 3), []string{"bogus"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
