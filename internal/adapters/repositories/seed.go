package repositories

import (
	"context"
	"cvrp-route-service/internal/adapters/instancefile"
	"cvrp-route-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// Populate the repository with the instances listed in a JSON or YAML file.
// Coordinate instances using the "ors" metric need src; it may be nil otherwise.
// Returns the number of instances stored.
func SeedInstances(
	ctx context.Context,
	repo ports.InstanceRepository,
	path string,
	src ports.MatrixSource,
) (int, error) {
	if repo == nil {
		return 0, errors.New("seed instances: repository is nil")
	}

	files, err := instancefile.Load(path)
	if err != nil {
		return 0, fmt.Errorf("seed instances: %w", err)
	}

	for i, f := range files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return i, fmt.Errorf("seed instances: entry %d: name cannot be empty", i+1)
		}

		inst, err := f.Build(ctx, src)
		if err != nil {
			return i, fmt.Errorf("seed instances: entry %d: %w", i+1, err)
		}
		if err := repo.SaveInstance(ctx, name, inst); err != nil {
			return i, fmt.Errorf("seed instances: %w", err)
		}
	}

	return len(files), nil
}
