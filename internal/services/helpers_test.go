package services

import (
	"cvrp-route-service/internal/adapters/distance"
	"cvrp-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

// referenceMatrix is the 5-node example: depot 0 and customers 1..4.
var referenceMatrix = [][]float64{
	{0, 10, 15, 0, 10},
	{10, 0, 30, 25, 30},
	{15, 30, 0, 30, 20},
	{20, 25, 30, 0, 15},
	{10, 30, 20, 15, 0},
}

func referenceInstance(t *testing.T, fleetSize int) *domain.ProblemInstance {
	t.Helper()
	return matrixInstance(t, referenceMatrix, []float64{0, 5, 10, 5, 10}, 10, fleetSize)
}

func customerIDs(n int) []domain.NodeID {
	ids := make([]domain.NodeID, 0, n-1)
	for i := 1; i < n; i++ {
		ids = append(ids, domain.NodeID(i))
	}
	return ids
}

func matrixInstance(t *testing.T, matrix [][]float64, demands []float64, capacity float64, fleetSize int) *domain.ProblemInstance {
	t.Helper()
	p, err := distance.NewMatrixProvider(matrix)
	require.NoError(t, err)

	inst, err := domain.NewProblemInstance(domain.InstanceParams{
		Depot:     0,
		Customers: customerIDs(len(matrix)),
		Costs:     p,
		Demands:   demands,
		Capacity:  capacity,
		FleetSize: fleetSize,
	})
	require.NoError(t, err)
	return inst
}

func pointInstance(t *testing.T, points []domain.Point, demands []float64, capacity float64, fleetSize int) *domain.ProblemInstance {
	t.Helper()
	p, err := distance.NewEuclideanProvider(points)
	require.NoError(t, err)

	inst, err := domain.NewProblemInstance(domain.InstanceParams{
		Depot:     0,
		Customers: customerIDs(len(points)),
		Costs:     p,
		Demands:   demands,
		Capacity:  capacity,
		FleetSize: fleetSize,
	})
	require.NoError(t, err)
	return inst
}

func routesOf(rs domain.RouteSet) [][]domain.NodeID {
	out := make([][]domain.NodeID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Nodes)
	}
	return out
}

// gridInstance is a larger deterministic instance for property-style checks.
func gridInstance(t *testing.T, fleetSize int) *domain.ProblemInstance {
	t.Helper()
	points := []domain.Point{{X: 0, Y: 0}}
	demands := []float64{0}
	for i := 0; i < 24; i++ {
		x := float64((i*7)%11) - 5
		y := float64((i*5)%13) - 6
		points = append(points, domain.Point{X: x, Y: y})
		demands = append(demands, float64(1+(i*3)%5))
	}
	return pointInstance(t, points, demands, 12, fleetSize)
}
