package dto

import (
	"cvrp-route-service/internal/adapters/instancefile"
	"cvrp-route-service/internal/domain"
	"time"
)

type InstanceRequest struct {
	Name        string         `json:"name,omitempty" validate:"max=128"`
	Depot       int            `json:"depot" validate:"gte=0"`
	Customers   []int          `json:"customers,omitempty" validate:"omitempty,dive,gte=0"`
	Matrix      [][]float64    `json:"matrix,omitempty" validate:"required_without=Coordinates"`
	Coordinates []domain.Point `json:"coordinates,omitempty" validate:"required_without=Matrix"`
	Metric      string         `json:"metric,omitempty" validate:"omitempty,oneof=euclidean ors"`
	Demands     []float64      `json:"demands" validate:"required,min=1,dive,gte=0"`
	Capacity    float64        `json:"capacity" validate:"gt=0"`
	FleetSize   int            `json:"fleet_size,omitempty" validate:"omitempty,gte=1"`
}

func (r InstanceRequest) File() instancefile.File {
	return instancefile.File{
		Name:        r.Name,
		Depot:       r.Depot,
		Customers:   r.Customers,
		Matrix:      r.Matrix,
		Coordinates: r.Coordinates,
		Metric:      r.Metric,
		Demands:     r.Demands,
		Capacity:    r.Capacity,
		FleetSize:   r.FleetSize,
	}
}

type SaveInstanceResponse struct {
	Name      string `json:"name"`
	Customers int    `json:"customers"`
}

type InstanceSummaryResponse struct {
	Name      string    `json:"name"`
	Customers int       `json:"customers"`
	Capacity  float64   `json:"capacity"`
	FleetSize int       `json:"fleet_size"`
	CreatedAt time.Time `json:"created_at"`
}

type ListInstancesResponse struct {
	Instances []InstanceSummaryResponse `json:"instances"`
}

type RunResponse struct {
	ID          string    `json:"id"`
	Strategy    string    `json:"strategy"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     string    `json:"outcome"`
	ErrorKind   string    `json:"error_kind"`
	Routes      int       `json:"routes"`
	Unreachable int       `json:"unreachable"`
	TotalCost   float64   `json:"total_cost"`
	DurationMS  int64     `json:"duration_ms"`
	CacheHit    bool      `json:"cache_hit"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListRunsResponse struct {
	Instance string        `json:"instance"`
	Runs     []RunResponse `json:"runs"`
}
