package repositories

import (
	"context"
	"cvrp-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite-backed implementation of the SolveRunRepository port.
type SqliteRunRepository struct{ DB *sql.DB }

func NewSqliteRunRepository(db *sql.DB) *SqliteRunRepository {
	return &SqliteRunRepository{DB: db}
}

func (s *SqliteRunRepository) SaveRun(ctx context.Context, run ports.SolveRun) error {
	if s.DB == nil {
		return errors.New("sqlite run repository: DB is nil")
	}
	if run.ID == "" {
		return errors.New("save run: id must not be empty")
	}

	query := `
	INSERT INTO solve_runs (
		id,
		instance_name,
		strategy,
		fingerprint,
		outcome,
		error_kind,
		routes,
		unreachable,
		total_cost,
		duration_ms,
		cache_hit,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	cacheHit := 0
	if run.CacheHit {
		cacheHit = 1
	}
	_, err := s.DB.ExecContext(ctx, query,
		run.ID, run.InstanceName, run.Strategy, run.Fingerprint, run.Outcome, run.ErrorKind,
		run.Routes, run.Unreachable, run.TotalCost, run.Duration.Milliseconds(), cacheHit,
		run.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save run %s: insert: %w", run.ID, err)
	}
	return nil
}

// List runs for one instance, or for every instance when instanceName is empty.
func (s *SqliteRunRepository) ListRuns(ctx context.Context, instanceName string, limit int) ([]ports.SolveRun, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite run repository: DB is nil")
	}
	if limit <= 0 {
		// SQLite treats a negative LIMIT as unbounded.
		limit = -1
	}

	query := `
	SELECT
		id,
		instance_name,
		strategy,
		fingerprint,
		outcome,
		error_kind,
		routes,
		unreachable,
		total_cost,
		duration_ms,
		cache_hit,
		created_at
	FROM solve_runs
	WHERE ? = '' OR instance_name = ?
	ORDER BY created_at DESC, id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, instanceName, instanceName, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query solve_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]ports.SolveRun, 0, 16)
	for rows.Next() {
		var (
			run        ports.SolveRun
			durationMS int64
			cacheHit   int
			createdAt  string
		)
		err := rows.Scan(
			&run.ID, &run.InstanceName, &run.Strategy, &run.Fingerprint, &run.Outcome, &run.ErrorKind,
			&run.Routes, &run.Unreachable, &run.TotalCost, &durationMS, &cacheHit, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.CacheHit = cacheHit != 0
		run.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse created_at %q: %w", createdAt, err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}
	return runs, nil
}
