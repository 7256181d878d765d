package repositories

import (
	"cvrp-route-service/internal/adapters/distance"
	"cvrp-route-service/internal/domain"
	"encoding/json"
	"fmt"
)

// Column values of an instance row. JSON columns hold the slices and the dense cost matrix.
type instanceRow struct {
	depot     int
	customers string
	demands   string
	matrix    string
	capacity  float64
	fleetSize int
}

func encodeInstance(inst *domain.ProblemInstance) (instanceRow, error) {
	matrix, err := inst.DenseMatrix()
	if err != nil {
		return instanceRow{}, fmt.Errorf("encode instance: %w", err)
	}

	customers, err := json.Marshal(inst.Customers())
	if err != nil {
		return instanceRow{}, fmt.Errorf("encode instance: customers: %w", err)
	}
	demands, err := json.Marshal(inst.Demands())
	if err != nil {
		return instanceRow{}, fmt.Errorf("encode instance: demands: %w", err)
	}
	m, err := json.Marshal(matrix)
	if err != nil {
		return instanceRow{}, fmt.Errorf("encode instance: matrix: %w", err)
	}

	return instanceRow{
		depot:     int(inst.Depot()),
		customers: string(customers),
		demands:   string(demands),
		matrix:    string(m),
		capacity:  inst.Capacity(),
		fleetSize: inst.FleetSize(),
	}, nil
}

func decodeInstance(r instanceRow) (*domain.ProblemInstance, error) {
	var customers []domain.NodeID
	if err := json.Unmarshal([]byte(r.customers), &customers); err != nil {
		return nil, fmt.Errorf("decode instance: customers: %w", err)
	}
	var demands []float64
	if err := json.Unmarshal([]byte(r.demands), &demands); err != nil {
		return nil, fmt.Errorf("decode instance: demands: %w", err)
	}
	var matrix [][]float64
	if err := json.Unmarshal([]byte(r.matrix), &matrix); err != nil {
		return nil, fmt.Errorf("decode instance: matrix: %w", err)
	}

	costs, err := distance.NewMatrixProvider(matrix)
	if err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}

	inst, err := domain.NewProblemInstance(domain.InstanceParams{
		Depot:     domain.NodeID(r.depot),
		Customers: customers,
		Costs:     costs,
		Demands:   demands,
		Capacity:  r.capacity,
		FleetSize: r.fleetSize,
	})
	if err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}
	return inst, nil
}

func customerCount(customersJSON string) int {
	var customers []domain.NodeID
	if err := json.Unmarshal([]byte(customersJSON), &customers); err != nil {
		return 0
	}
	return len(customers)
}
