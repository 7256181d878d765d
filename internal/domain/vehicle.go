package domain

import "fmt"

// Vehicle accumulates stops for a single route under construction.
type Vehicle struct {
	Depot    NodeID
	Capacity float64
	Load     float64
	Stops    []NodeID
}

func NewVehicle(depot NodeID, capacity float64) *Vehicle {
	return &Vehicle{
		Depot:    depot,
		Capacity: capacity,
	}
}

// LoadTolerance is the relative slack allowed when comparing summed demand with capacity.
const LoadTolerance = 1e-9

// WithinCapacity reports whether load fits capacity up to float rounding of the demand sum.
func WithinCapacity(load, capacity float64) bool {
	return load <= capacity*(1+LoadTolerance)
}

// Fits reports whether demand can be added without exceeding capacity.
func (v *Vehicle) Fits(demand float64) bool {
	return WithinCapacity(v.Load+demand, v.Capacity)
}

// Visit appends a customer stop to the vehicle.
func (v *Vehicle) Visit(node NodeID, demand float64) error {
	if !v.Fits(demand) {
		return fmt.Errorf("visit node %d: load %g + demand %g exceeds capacity %g", node, v.Load, demand, v.Capacity)
	}
	v.Stops = append(v.Stops, node)
	v.Load += demand
	return nil
}

// Last returns the node the vehicle currently sits at.
func (v *Vehicle) Last() NodeID {
	if len(v.Stops) == 0 {
		return v.Depot
	}
	return v.Stops[len(v.Stops)-1]
}

// Close returns the vehicle's stops as a depot-anchored route.
func (v *Vehicle) Close() Route {
	return NewRoute(v.Depot, v.Stops...)
}
