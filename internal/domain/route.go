package domain

import "slices"

// Route is an ordered depot-to-depot visit sequence: [depot, c1, ..., ck, depot].
type Route struct {
	Nodes []NodeID `json:"nodes"`
}

func NewRoute(depot NodeID, interior ...NodeID) Route {
	nodes := make([]NodeID, 0, len(interior)+2)
	nodes = append(nodes, depot)
	nodes = append(nodes, interior...)
	nodes = append(nodes, depot)
	return Route{Nodes: nodes}
}

// Interior returns the customer visits without the depot endpoints.
func (r Route) Interior() []NodeID {
	if len(r.Nodes) < 2 {
		return nil
	}
	return r.Nodes[1 : len(r.Nodes)-1]
}

func (r Route) Empty() bool { return len(r.Interior()) == 0 }

// Load sums demand over interior nodes.
func (r Route) Load(inst *ProblemInstance) (float64, error) {
	var total float64
	for _, n := range r.Interior() {
		d, err := inst.Demand(n)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// Cost sums travel cost along consecutive legs.
func (r Route) Cost(inst *ProblemInstance) (float64, error) {
	var total float64
	for k := 1; k < len(r.Nodes); k++ {
		c, err := inst.Cost(r.Nodes[k-1], r.Nodes[k])
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

func (r Route) Clone() Route { return Route{Nodes: slices.Clone(r.Nodes)} }

// RouteSet is the ordered output of a construction run.
type RouteSet []Route

func (rs RouteSet) TotalCost(inst *ProblemInstance) (float64, error) {
	var total float64
	for _, r := range rs {
		c, err := r.Cost(inst)
		if err != nil {
			return 0, err
		}
		total += c
	}
	return total, nil
}

func (rs RouteSet) Clone() RouteSet {
	out := make(RouteSet, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Solution is the result of one solve. It may be partial when the solve reports
// unreachable customers or an exhausted fleet.
type Solution struct {
	Strategy    string   `json:"strategy"`
	Routes      RouteSet `json:"routes"`
	Unreachable []NodeID `json:"unreachable"`
}
