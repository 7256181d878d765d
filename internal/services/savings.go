package services

import (
	"cvrp-route-service/internal/domain"
	"fmt"
	"slices"
)

// SavingsEntry is the cost reduction of serving I and J on one route instead of two
// dedicated depot round-trips.
type SavingsEntry struct {
	I, J   domain.NodeID
	Saving float64
}

// ComputeSavings ranks every ordered pair of distinct customers by
// saving(i,j) = cost(depot,i) + cost(depot,j) - cost(i,j).
//
// The result is sorted by descending saving; equal savings are ordered by ascending I,
// then ascending J, so the ranking is reproducible for a fixed instance.
func ComputeSavings(inst *domain.ProblemInstance) ([]SavingsEntry, error) {
	depot := inst.Depot()
	customers := inst.Customers()

	fromDepot := make(map[domain.NodeID]float64, len(customers))
	for _, c := range customers {
		d, err := inst.Cost(depot, c)
		if err != nil {
			return nil, fmt.Errorf("compute savings: depot leg to %d: %w", c, err)
		}
		fromDepot[c] = d
	}

	entries := make([]SavingsEntry, 0, len(customers)*(len(customers)-1))
	for _, i := range customers {
		for _, j := range customers {
			if i == j {
				continue
			}
			cij, err := inst.Cost(i, j)
			if err != nil {
				return nil, fmt.Errorf("compute savings: leg %d -> %d: %w", i, j, err)
			}
			entries = append(entries, SavingsEntry{
				I:      i,
				J:      j,
				Saving: fromDepot[i] + fromDepot[j] - cij,
			})
		}
	}

	slices.SortFunc(entries, compareSavings)

	return entries, nil
}

func compareSavings(a, b SavingsEntry) int {
	if a.Saving > b.Saving {
		return -1
	}
	if a.Saving < b.Saving {
		return 1
	}
	if a.I != b.I {
		if a.I < b.I {
			return -1
		}
		return 1
	}
	if a.J < b.J {
		return -1
	}
	if a.J > b.J {
		return 1
	}
	return 0
}
