package domain

import (
	"math"
	"slices"
)

// NodeID indexes a location. The depot is 0 by convention; customers occupy the rest.
type NodeID int

// CostProvider supplies travel cost for any ordered pair of nodes.
// Implementations must be side-effect free and fail with ErrOutOfRange for unknown ids.
type CostProvider interface {
	Cost(from, to NodeID) (float64, error)
	// Number of nodes the provider knows about (ids 0..Size-1).
	Size() int
}

// InstanceParams is the raw input to NewProblemInstance.
type InstanceParams struct {
	Depot     NodeID
	Customers []NodeID
	Costs     CostProvider
	Demands   []float64
	Capacity  float64
	FleetSize int
}

// ProblemInstance is an immutable, validated CVRP instance.
type ProblemInstance struct {
	depot     NodeID
	customers []NodeID
	costs     CostProvider
	demands   []float64
	capacity  float64
	fleetSize int
}

// NewProblemInstance validates params eagerly; every failure wraps ErrInvalidInstance.
func NewProblemInstance(p InstanceParams) (*ProblemInstance, error) {
	if p.Costs == nil {
		return nil, invalidf("cost provider is nil")
	}

	n := p.Costs.Size()
	if n < 1 {
		return nil, invalidf("cost provider has no nodes")
	}

	if p.Depot < 0 || int(p.Depot) >= n {
		return nil, invalidf("depot %d outside [0,%d)", p.Depot, n)
	}

	if len(p.Customers)+1 != n {
		return nil, invalidf("%d customers plus depot do not match %d nodes", len(p.Customers), n)
	}

	seen := make([]bool, n)
	seen[p.Depot] = true
	for _, c := range p.Customers {
		if c < 0 || int(c) >= n {
			return nil, invalidf("customer %d outside [0,%d)", c, n)
		}
		if c == p.Depot {
			return nil, invalidf("customer list contains depot %d", c)
		}
		if seen[c] {
			return nil, invalidf("duplicate customer %d", c)
		}
		seen[c] = true
	}

	if len(p.Demands) != n {
		return nil, invalidf("demand vector has %d entries, want %d", len(p.Demands), n)
	}
	for i, d := range p.Demands {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return nil, invalidf("demand of node %d must be a non-negative number, got %g", i, d)
		}
	}
	if p.Demands[p.Depot] != 0 {
		return nil, invalidf("depot demand must be 0, got %g", p.Demands[p.Depot])
	}

	if math.IsNaN(p.Capacity) || math.IsInf(p.Capacity, 0) || p.Capacity <= 0 {
		return nil, invalidf("capacity must be positive, got %g", p.Capacity)
	}

	if p.FleetSize < 1 {
		return nil, invalidf("fleet size must be at least 1, got %d", p.FleetSize)
	}

	return &ProblemInstance{
		depot:     p.Depot,
		customers: slices.Clone(p.Customers),
		costs:     p.Costs,
		demands:   slices.Clone(p.Demands),
		capacity:  p.Capacity,
		fleetSize: p.FleetSize,
	}, nil
}

func (p *ProblemInstance) Depot() NodeID     { return p.depot }
func (p *ProblemInstance) Capacity() float64 { return p.capacity }
func (p *ProblemInstance) FleetSize() int    { return p.fleetSize }
func (p *ProblemInstance) NumNodes() int     { return len(p.demands) }

// Customers returns a copy in input order.
func (p *ProblemInstance) Customers() []NodeID { return slices.Clone(p.customers) }

// Demands returns a copy of the per-node demand vector.
func (p *ProblemInstance) Demands() []float64 { return slices.Clone(p.demands) }

func (p *ProblemInstance) Demand(n NodeID) (float64, error) {
	if n < 0 || int(n) >= len(p.demands) {
		return 0, &OutOfRangeError{Node: n, Size: len(p.demands)}
	}
	return p.demands[n], nil
}

func (p *ProblemInstance) Cost(from, to NodeID) (float64, error) {
	return p.costs.Cost(from, to)
}

// WithFleetSize returns a copy of the instance with a different fleet limit.
func (p *ProblemInstance) WithFleetSize(fleetSize int) (*ProblemInstance, error) {
	return NewProblemInstance(InstanceParams{
		Depot:     p.depot,
		Customers: p.customers,
		Costs:     p.costs,
		Demands:   p.demands,
		Capacity:  p.capacity,
		FleetSize: fleetSize,
	})
}

// DenseMatrix materializes the full cost matrix, e.g. for persistence or fingerprinting.
func (p *ProblemInstance) DenseMatrix() ([][]float64, error) {
	n := len(p.demands)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			c, err := p.costs.Cost(NodeID(i), NodeID(j))
			if err != nil {
				return nil, err
			}
			row[j] = c
		}
		out[i] = row
	}
	return out, nil
}
