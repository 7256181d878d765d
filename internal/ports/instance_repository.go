package ports

import (
	"context"
	"cvrp-route-service/internal/domain"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Summary row for a stored instance.
type InstanceSummary struct {
	Name      string
	Customers int
	Capacity  float64
	FleetSize int
	CreatedAt time.Time
}

// Port: a boundary for storing and retrieving named problem instances.
type InstanceRepository interface {
	// Insert or replace the instance stored under name.
	SaveInstance(ctx context.Context, name string, inst *domain.ProblemInstance) error
	// Return ErrNotFound when no instance has that name.
	GetInstance(ctx context.Context, name string) (*domain.ProblemInstance, error)
	ListInstances(ctx context.Context) ([]InstanceSummary, error)
}
