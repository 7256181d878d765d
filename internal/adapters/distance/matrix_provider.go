package distance

import (
	"cvrp-route-service/internal/domain"
	"fmt"
	"math"
)

// MatrixProvider serves costs from a precomputed dense matrix.
type MatrixProvider struct {
	m [][]float64
}

// NewMatrixProvider copies and validates a square, non-negative matrix with a zero diagonal.
// The matrix need not be symmetric.
func NewMatrixProvider(matrix [][]float64) (*MatrixProvider, error) {
	n := len(matrix)
	if n == 0 {
		return nil, fmt.Errorf("%w: cost matrix is empty", domain.ErrInvalidInstance)
	}

	m := make([][]float64, n)
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("%w: cost matrix row %d has %d entries, want %d", domain.ErrInvalidInstance, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%w: cost(%d,%d) must be a non-negative number, got %g", domain.ErrInvalidInstance, i, j, v)
			}
			if i == j && v != 0 {
				return nil, fmt.Errorf("%w: cost(%d,%d) must be 0, got %g", domain.ErrInvalidInstance, i, j, v)
			}
		}
		m[i] = append([]float64(nil), row...)
	}

	return &MatrixProvider{m: m}, nil
}

func (p *MatrixProvider) Size() int { return len(p.m) }

func (p *MatrixProvider) Cost(from, to domain.NodeID) (float64, error) {
	n := len(p.m)
	if from < 0 || int(from) >= n {
		return 0, &domain.OutOfRangeError{Node: from, Size: n}
	}
	if to < 0 || int(to) >= n {
		return 0, &domain.OutOfRangeError{Node: to, Size: n}
	}
	return p.m[from][to], nil
}
