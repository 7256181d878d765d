package repositories

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PostgresInstanceRepository stores instances in Postgres, with JSONB for the slices and matrix.
type PostgresInstanceRepository struct{ DB *sql.DB }

func NewPostgresInstanceRepository(db *sql.DB) *PostgresInstanceRepository {
	return &PostgresInstanceRepository{DB: db}
}

func (p *PostgresInstanceRepository) SaveInstance(ctx context.Context, name string, inst *domain.ProblemInstance) error {
	if p.DB == nil {
		return errors.New("postgres instance repository: DB is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("save instance: name must not be empty")
	}
	if inst == nil {
		return errors.New("save instance: instance is nil")
	}

	row, err := encodeInstance(inst)
	if err != nil {
		return fmt.Errorf("save instance %q: %w", name, err)
	}

	query := `
	INSERT INTO instances (name, depot, customers, demands, matrix, capacity, fleet_size, created_at)
	VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7, now())
	ON CONFLICT (name) DO UPDATE
	SET depot = EXCLUDED.depot,
		customers = EXCLUDED.customers,
		demands = EXCLUDED.demands,
		matrix = EXCLUDED.matrix,
		capacity = EXCLUDED.capacity,
		fleet_size = EXCLUDED.fleet_size,
		created_at = EXCLUDED.created_at;
	`
	_, err = p.DB.ExecContext(ctx, query,
		name, row.depot, row.customers, row.demands, row.matrix, row.capacity, row.fleetSize,
	)
	if err != nil {
		return fmt.Errorf("save instance %q: upsert: %w", name, err)
	}
	return nil
}

func (p *PostgresInstanceRepository) GetInstance(ctx context.Context, name string) (*domain.ProblemInstance, error) {
	if p.DB == nil {
		return nil, errors.New("postgres instance repository: DB is nil")
	}

	query := `
	SELECT depot, customers::text, demands::text, matrix::text, capacity, fleet_size
	FROM instances
	WHERE name = $1;
	`
	var r instanceRow
	err := p.DB.QueryRowContext(ctx, query, strings.TrimSpace(name)).
		Scan(&r.depot, &r.customers, &r.demands, &r.matrix, &r.capacity, &r.fleetSize)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get instance %q: %w", name, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get instance %q: %w", name, err)
	}

	inst, err := decodeInstance(r)
	if err != nil {
		return nil, fmt.Errorf("get instance %q: %w", name, err)
	}
	return inst, nil
}

func (p *PostgresInstanceRepository) ListInstances(ctx context.Context) ([]ports.InstanceSummary, error) {
	if p.DB == nil {
		return nil, errors.New("postgres instance repository: DB is nil")
	}

	query := `
	SELECT name, jsonb_array_length(customers), capacity, fleet_size, created_at
	FROM instances
	ORDER BY name;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instances: query instances table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.InstanceSummary, 0, 16)
	for rows.Next() {
		var sum ports.InstanceSummary
		if err := rows.Scan(&sum.Name, &sum.Customers, &sum.Capacity, &sum.FleetSize, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("list instances: scan row: %w", err)
		}
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list instances: row iteration: %w", err)
	}
	return out, nil
}
