package repositories

import (
	"context"
	"database/sql"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	return execSchema(ctx, db, []string{
		`
	CREATE TABLE IF NOT EXISTS instances (
		name TEXT PRIMARY KEY,
		depot INTEGER NOT NULL,
		customers JSONB NOT NULL,
		demands JSONB NOT NULL,
		matrix JSONB NOT NULL,
		capacity DOUBLE PRECISION NOT NULL,
		fleet_size INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS solve_runs (
		id UUID PRIMARY KEY,
		instance_name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error_kind TEXT NOT NULL,
		routes INTEGER NOT NULL,
		unreachable INTEGER NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		duration_ms BIGINT NOT NULL,
		cache_hit BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS cost_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        cost DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_solve_runs_instance_created
    ON solve_runs(instance_name, created_at DESC);
	`,
	})
}
