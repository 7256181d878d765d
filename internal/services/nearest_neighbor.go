package services

import (
	"cvrp-route-service/internal/domain"
	"fmt"
)

// Build routes using a greedy, capacity-aware nearest-neighbor walk.
//
// Each route starts empty at the depot and repeatedly appends the unvisited customer that
// fits the remaining capacity and is cheapest to reach from the route's last node.
// When nothing fits, the route returns to the depot and the next one starts.
// Customers whose demand exceeds capacity on their own are returned as unreachable.
func NearestNeighborRoutes(inst *domain.ProblemInstance) (domain.RouteSet, []domain.NodeID, error) {
	depot := inst.Depot()
	capacity := inst.Capacity()
	customers := inst.Customers()

	visited := make([]bool, inst.NumNodes())
	remaining := 0

	var unreachable []domain.NodeID
	for _, c := range customers {
		d, err := inst.Demand(c)
		if err != nil {
			return nil, nil, fmt.Errorf("nearest neighbor: %w", err)
		}
		if !domain.WithinCapacity(d, capacity) {
			unreachable = append(unreachable, c)
			visited[c] = true
			continue
		}
		remaining++
	}

	routes := domain.RouteSet{}
	for remaining > 0 {
		v := domain.NewVehicle(depot, capacity)

		for {
			best := domain.NodeID(-1)
			var bestCost, bestDemand float64

			for _, c := range customers {
				if visited[c] {
					continue
				}
				d, err := inst.Demand(c)
				if err != nil {
					return nil, nil, fmt.Errorf("nearest neighbor: %w", err)
				}
				if !v.Fits(d) {
					continue
				}
				cost, err := inst.Cost(v.Last(), c)
				if err != nil {
					return nil, nil, fmt.Errorf("nearest neighbor: leg %d -> %d: %w", v.Last(), c, err)
				}
				// Tie-breaker ensures deterministic ordering when costs are equal.
				if best < 0 || cost < bestCost || (cost == bestCost && c < best) {
					best, bestCost, bestDemand = c, cost, d
				}
			}

			if best < 0 {
				break
			}

			if err := v.Visit(best, bestDemand); err != nil {
				return nil, nil, fmt.Errorf("nearest neighbor: %w", err)
			}
			visited[best] = true
			remaining--
		}

		if len(v.Stops) == 0 {
			return nil, nil, &domain.InvariantError{Reason: "nearest neighbor: empty vehicle could not take any remaining customer"}
		}
		routes = append(routes, v.Close())
	}

	return routes, unreachable, nil
}
