package repositories

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite-backed implementation of the InstanceRepository port.
type SqliteInstanceRepository struct{ DB *sql.DB }

func NewSqliteInstanceRepository(db *sql.DB) *SqliteInstanceRepository {
	return &SqliteInstanceRepository{DB: db}
}

func (s *SqliteInstanceRepository) SaveInstance(ctx context.Context, name string, inst *domain.ProblemInstance) error {
	if s.DB == nil {
		return errors.New("sqlite instance repository: DB is nil")
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
	INSERT OR REPLACE INTO instances (
		name,
		depot,
		customers,
		demands,
		matrix,
		capacity,
		fleet_size,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		name, row.depot, row.customers, row.demands, row.matrix, row.capacity, row.fleetSize,
		time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save instance %q: insert: %w", name, err)
	}
	return nil
}

func (s *SqliteInstanceRepository) GetInstance(ctx context.Context, name string) (*domain.ProblemInstance, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite instance repository: DB is nil")
	}

	query := `
	SELECT
		depot,
		customers,
		demands,
		matrix,
		capacity,
		fleet_size
	FROM instances
	WHERE name = ?;
	`
	var r instanceRow
	err := s.DB.QueryRowContext(ctx, query, strings.TrimSpace(name)).
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

// Return every stored instance ordered by name.
func (s *SqliteInstanceRepository) ListInstances(ctx context.Context) ([]ports.InstanceSummary, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite instance repository: DB is nil")
	}

	query := `
	SELECT
		name,
		customers,
		capacity,
		fleet_size,
		created_at
	FROM instances
	ORDER BY name;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list instances: query instances table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.InstanceSummary, 0, 16)
	for rows.Next() {
		var (
			sum       ports.InstanceSummary
			customers string
			createdAt string
		)
		if err := rows.Scan(&sum.Name, &customers, &sum.Capacity, &sum.FleetSize, &createdAt); err != nil {
			return nil, fmt.Errorf("list instances: scan row: %w", err)
		}
		sum.Customers = customerCount(customers)
		sum.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list instances: parse created_at %q: %w", createdAt, err)
		}
		out = append(out, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list instances: row iteration: %w", err)
	}
	return out, nil
}
