package repositories

import (
	"context"
	"cvrp-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresRunRepository struct{ DB *sql.DB }

func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{DB: db}
}

func (p *PostgresRunRepository) SaveRun(ctx context.Context, run ports.SolveRun) error {
	if p.DB == nil {
		return errors.New("postgres run repository: DB is nil")
	}
	if run.ID == "" {
		return errors.New("save run: id must not be empty")
	}

	query := `
	INSERT INTO solve_runs (
		id, instance_name, strategy, fingerprint, outcome, error_kind,
		routes, unreachable, total_cost, duration_ms, cache_hit, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := p.DB.ExecContext(ctx, query,
		run.ID, run.InstanceName, run.Strategy, run.Fingerprint, run.Outcome, run.ErrorKind,
		run.Routes, run.Unreachable, run.TotalCost, run.Duration.Milliseconds(), run.CacheHit,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: insert: %w", run.ID, err)
	}
	return nil
}

// List runs for one instance, or for every instance when instanceName is empty.
func (p *PostgresRunRepository) ListRuns(ctx context.Context, instanceName string, limit int) ([]ports.SolveRun, error) {
	if p.DB == nil {
		return nil, errors.New("postgres run repository: DB is nil")
	}

	// A NULL limit means ALL in Postgres.
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	query := `
	SELECT
		id::text, instance_name, strategy, fingerprint, outcome, error_kind,
		routes, unreachable, total_cost, duration_ms, cache_hit, created_at
	FROM solve_runs
	WHERE $1::text = '' OR instance_name = $1
	ORDER BY created_at DESC, id
	LIMIT $2;
	`
	rows, err := p.DB.QueryContext(ctx, query, instanceName, lim)
	if err != nil {
		return nil, fmt.Errorf("list runs: query solve_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]ports.SolveRun, 0, 16)
	for rows.Next() {
		var (
			run        ports.SolveRun
			durationMS int64
		)
		err := rows.Scan(
			&run.ID, &run.InstanceName, &run.Strategy, &run.Fingerprint, &run.Outcome, &run.ErrorKind,
			&run.Routes, &run.Unreachable, &run.TotalCost, &durationMS, &run.CacheHit, &run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}
	return runs, nil
}
