package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	createInstancesQuery := `
	CREATE TABLE IF NOT EXISTS instances (
		name TEXT PRIMARY KEY,
		depot INTEGER NOT NULL,
		customers TEXT NOT NULL,
		demands TEXT NOT NULL,
		matrix TEXT NOT NULL,
		capacity REAL NOT NULL,
		fleet_size INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createSolveRunsQuery := `
	CREATE TABLE IF NOT EXISTS solve_runs (
		id TEXT PRIMARY KEY,
		instance_name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error_kind TEXT NOT NULL,
		routes INTEGER NOT NULL,
		unreachable INTEGER NOT NULL,
		total_cost REAL NOT NULL,
		duration_ms INTEGER NOT NULL,
		cache_hit INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createCostCacheQuery := `
	CREATE TABLE IF NOT EXISTS cost_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        cost REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_solve_runs_instance_created
    ON solve_runs(instance_name, created_at);
	`

	return execSchema(ctx, db, []string{
		createInstancesQuery,
		createSolveRunsQuery,
		createCostCacheQuery,
		createIndexQuery,
	})
}

func execSchema(ctx context.Context, db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Fixed-width UTC timestamps sort lexically in created_at order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
