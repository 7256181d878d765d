package distance

import (
	"cvrp-route-service/internal/domain"
	"fmt"
	"math"
)

// EuclideanProvider computes straight-line distance between 2-D points on demand.
type EuclideanProvider struct {
	points []domain.Point
}

func NewEuclideanProvider(points []domain.Point) (*EuclideanProvider, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no coordinates given", domain.ErrInvalidInstance)
	}
	for i, pt := range points {
		if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) || math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			return nil, fmt.Errorf("%w: coordinate of node %d is not finite", domain.ErrInvalidInstance, i)
		}
	}
	return &EuclideanProvider{points: append([]domain.Point(nil), points...)}, nil
}

func (p *EuclideanProvider) Size() int { return len(p.points) }

func (p *EuclideanProvider) Cost(from, to domain.NodeID) (float64, error) {
	n := len(p.points)
	if from < 0 || int(from) >= n {
		return 0, &domain.OutOfRangeError{Node: from, Size: n}
	}
	if to < 0 || int(to) >= n {
		return 0, &domain.OutOfRangeError{Node: to, Size: n}
	}
	if from == to {
		return 0, nil
	}
	a, b := p.points[from], p.points[to]
	return math.Hypot(a.X-b.X, a.Y-b.Y), nil
}
