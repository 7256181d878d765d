package instancefile

import (
	"bytes"
	"context"
	"cvrp-route-service/internal/adapters/distance"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MetricEuclidean = "euclidean"
	MetricORS       = "ors"
)

// ErrMatrixSource marks failures of the external routing engine behind the "ors" metric.
var ErrMatrixSource = errors.New("matrix source failed")

// File is the on-disk description of a problem instance.
//
// Costs come either from an explicit matrix or from coordinates. Coordinates are measured
// with the Euclidean metric unless Metric is "ors", which asks a routing engine for road
// distances. Customers defaults to every node except the depot, ascending.
type File struct {
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Depot       int            `json:"depot" yaml:"depot"`
	Customers   []int          `json:"customers,omitempty" yaml:"customers,omitempty"`
	Matrix      [][]float64    `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Coordinates []domain.Point `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Metric      string         `json:"metric,omitempty" yaml:"metric,omitempty"`
	Demands     []float64      `json:"demands" yaml:"demands"`
	Capacity    float64        `json:"capacity" yaml:"capacity"`
	FleetSize   int            `json:"fleet_size" yaml:"fleet_size"`
}

// Load reads one instance or a list of instances from a .json, .yaml or .yml file.
func Load(path string) ([]File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load instances: read %q: %w", path, err)
	}

	files, err := Decode(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("load instances: %q: %w", path, err)
	}
	return files, nil
}

// Decode parses data in the given format ("json", "yaml" or "yml").
func Decode(data []byte, format string) ([]File, error) {
	switch format {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var files []File
			if err := json.Unmarshal(trimmed, &files); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
			return files, nil
		}
		var f File
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return []File{f}, nil

	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if len(node.Content) == 0 {
			return nil, errors.New("parse yaml: empty document")
		}
		if node.Content[0].Kind == yaml.SequenceNode {
			var files []File
			if err := node.Decode(&files); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
			return files, nil
		}
		var f File
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return []File{f}, nil

	default:
		return nil, fmt.Errorf("unsupported instance format %q", format)
	}
}

// Build turns the file into a validated instance. src is consulted only for the "ors" metric.
func (f File) Build(ctx context.Context, src ports.MatrixSource) (*domain.ProblemInstance, error) {
	costs, err := f.costProvider(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("build instance %q: %w", f.Name, err)
	}

	customers := make([]domain.NodeID, 0, costs.Size())
	if len(f.Customers) > 0 {
		for _, c := range f.Customers {
			customers = append(customers, domain.NodeID(c))
		}
	} else {
		for i := 0; i < costs.Size(); i++ {
			if i != f.Depot {
				customers = append(customers, domain.NodeID(i))
			}
		}
	}

	inst, err := domain.NewProblemInstance(domain.InstanceParams{
		Depot:     domain.NodeID(f.Depot),
		Customers: customers,
		Costs:     costs,
		Demands:   f.Demands,
		Capacity:  f.Capacity,
		FleetSize: f.FleetSize,
	})
	if err != nil {
		return nil, fmt.Errorf("build instance %q: %w", f.Name, err)
	}
	return inst, nil
}

func (f File) costProvider(ctx context.Context, src ports.MatrixSource) (domain.CostProvider, error) {
	hasMatrix := len(f.Matrix) > 0
	hasCoords := len(f.Coordinates) > 0

	switch {
	case hasMatrix && hasCoords:
		return nil, fmt.Errorf("%w: give either matrix or coordinates, not both", domain.ErrInvalidInstance)
	case hasMatrix:
		return distance.NewMatrixProvider(f.Matrix)
	case !hasCoords:
		return nil, fmt.Errorf("%w: matrix or coordinates are required", domain.ErrInvalidInstance)
	}

	switch strings.ToLower(strings.TrimSpace(f.Metric)) {
	case "", MetricEuclidean:
		return distance.NewEuclideanProvider(f.Coordinates)
	case MetricORS:
		if src == nil {
			return nil, fmt.Errorf("%w: metric \"ors\" requires a configured matrix source", domain.ErrInvalidInstance)
		}
		m, err := src.FetchMatrix(ctx, f.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMatrixSource, err)
		}
		return distance.NewMatrixProvider(m)
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidInstance, f.Metric)
	}
}

// FromInstance exports an instance with its dense cost matrix.
func FromInstance(name string, inst *domain.ProblemInstance) (File, error) {
	matrix, err := inst.DenseMatrix()
	if err != nil {
		return File{}, fmt.Errorf("export instance %q: %w", name, err)
	}

	customers := make([]int, 0, len(inst.Customers()))
	for _, c := range inst.Customers() {
		customers = append(customers, int(c))
	}

	return File{
		Name:      name,
		Depot:     int(inst.Depot()),
		Customers: customers,
		Matrix:    matrix,
		Demands:   inst.Demands(),
		Capacity:  inst.Capacity(),
		FleetSize: inst.FleetSize(),
	}, nil
}
