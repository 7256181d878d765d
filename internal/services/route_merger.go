package services

import (
	"cvrp-route-service/internal/domain"
	"fmt"
	"slices"
)

type mergeSlot struct {
	nodes []domain.NodeID
	load  float64
	live  bool
}

// RouteMerger fuses depot round-trips along a savings ranking (Clarke-Wright).
//
// Routes live in an arena with stable indices. A merge tombstones both source slots and
// appends the fused route, so slot order is creation order. owner maps every routed
// customer to its slot for constant-time membership checks.
type RouteMerger struct {
	inst  *domain.ProblemInstance
	slots []mergeSlot
	owner []int
	live  int
}

// NewRouteMerger seeds one [depot, c, depot] route per customer, in instance order.
// Customers whose demand alone exceeds capacity get no route and are returned as unreachable.
func NewRouteMerger(inst *domain.ProblemInstance) (*RouteMerger, []domain.NodeID, error) {
	m := &RouteMerger{
		inst:  inst,
		owner: make([]int, inst.NumNodes()),
	}
	for i := range m.owner {
		m.owner[i] = -1
	}

	depot := inst.Depot()
	capacity := inst.Capacity()

	var unreachable []domain.NodeID
	for _, c := range inst.Customers() {
		d, err := inst.Demand(c)
		if err != nil {
			return nil, nil, fmt.Errorf("new route merger: %w", err)
		}
		if !domain.WithinCapacity(d, capacity) {
			unreachable = append(unreachable, c)
			continue
		}
		m.owner[c] = len(m.slots)
		m.slots = append(m.slots, mergeSlot{
			nodes: []domain.NodeID{depot, c, depot},
			load:  d,
			live:  true,
		})
		m.live++
	}

	return m, unreachable, nil
}

// Merge tries to fuse the route ending in e.I with the route starting at e.J.
//
// The merge is accepted only when the nodes sit on different live routes, the combined load
// fits the capacity, I is the last customer of its route and J is the first customer of the
// other. The fused route is A[:-1] + B[1:]. Merge reports whether the routes were fused.
func (m *RouteMerger) Merge(e SavingsEntry) bool {
	if !m.routed(e.I) || !m.routed(e.J) {
		return false
	}

	a, b := m.owner[e.I], m.owner[e.J]
	if a == b {
		return false
	}

	ra, rb := m.slots[a], m.slots[b]
	load := ra.load + rb.load
	if !domain.WithinCapacity(load, m.inst.Capacity()) {
		return false
	}

	if ra.nodes[len(ra.nodes)-2] != e.I || rb.nodes[1] != e.J {
		return false
	}

	fused := make([]domain.NodeID, 0, len(ra.nodes)+len(rb.nodes)-2)
	fused = append(fused, ra.nodes[:len(ra.nodes)-1]...)
	fused = append(fused, rb.nodes[1:]...)

	m.slots[a] = mergeSlot{}
	m.slots[b] = mergeSlot{}

	idx := len(m.slots)
	m.slots = append(m.slots, mergeSlot{nodes: fused, load: load, live: true})
	for _, n := range fused[1 : len(fused)-1] {
		m.owner[n] = idx
	}
	m.live--

	return true
}

// MergeAll consumes the ranking once, top to bottom, and returns the number of accepted merges.
func (m *RouteMerger) MergeAll(savings []SavingsEntry) int {
	merged := 0
	for _, e := range savings {
		if m.Merge(e) {
			merged++
		}
	}
	return merged
}

// Live is the number of routes currently in the arena.
func (m *RouteMerger) Live() int { return m.live }

// Routes returns the live routes in arena order.
func (m *RouteMerger) Routes() domain.RouteSet {
	out := make(domain.RouteSet, 0, m.live)
	for _, s := range m.slots {
		if s.live {
			out = append(out, domain.Route{Nodes: slices.Clone(s.nodes)})
		}
	}
	return out
}

func (m *RouteMerger) routed(n domain.NodeID) bool {
	return n >= 0 && int(n) < len(m.owner) && m.owner[n] >= 0
}
