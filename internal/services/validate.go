package services

import (
	"cvrp-route-service/internal/domain"
	"fmt"
)

// ValidateRoutes checks the post-conditions of a construction run.
//
// Every route must start and end at the depot with at least one customer in between and no
// depot inside; every customer not listed as unreachable must appear exactly once; no route
// may exceed capacity. Failures are *domain.InvariantError.
func ValidateRoutes(inst *domain.ProblemInstance, routes domain.RouteSet, unreachable []domain.NodeID) error {
	depot := inst.Depot()
	capacity := inst.Capacity()
	n := inst.NumNodes()

	skipped := make(map[domain.NodeID]bool, len(unreachable))
	for _, u := range unreachable {
		d, err := inst.Demand(u)
		if err != nil {
			return invariantf("unreachable node: %v", err)
		}
		if domain.WithinCapacity(d, capacity) {
			return invariantf("node %d reported unreachable but demand %g fits capacity %g", u, d, capacity)
		}
		skipped[u] = true
	}

	seen := make([]bool, n)
	for ri, r := range routes {
		if len(r.Nodes) < 3 {
			return invariantf("route %d has no customers: %v", ri, r.Nodes)
		}
		if r.Nodes[0] != depot || r.Nodes[len(r.Nodes)-1] != depot {
			return invariantf("route %d does not start and end at depot %d: %v", ri, depot, r.Nodes)
		}

		var load float64
		for _, c := range r.Interior() {
			if c < 0 || int(c) >= n {
				return invariantf("route %d visits unknown node %d", ri, c)
			}
			if c == depot {
				return invariantf("route %d visits the depot mid-route", ri)
			}
			if skipped[c] {
				return invariantf("route %d visits unreachable node %d", ri, c)
			}
			if seen[c] {
				return invariantf("node %d is visited more than once", c)
			}
			seen[c] = true

			d, err := inst.Demand(c)
			if err != nil {
				return invariantf("route %d: %v", ri, err)
			}
			load += d
		}

		if !domain.WithinCapacity(load, capacity) {
			return invariantf("route %d load %g exceeds capacity %g", ri, load, capacity)
		}
	}

	for _, c := range inst.Customers() {
		if !seen[c] && !skipped[c] {
			return invariantf("customer %d is not assigned to any route", c)
		}
	}

	return nil
}

func invariantf(format string, args ...any) error {
	return &domain.InvariantError{Reason: fmt.Sprintf(format, args...)}
}
