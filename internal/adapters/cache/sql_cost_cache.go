package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLCostCache is a Postgres-backed cache for origin->destination costs.
type SQLCostCache struct {
	DB *sql.DB
}

func NewSQLCostCache(db *sql.DB) *SQLCostCache {
	return &SQLCostCache{DB: db}
}

// Fetch cached costs for one origin and multiple destinations.
func (s *SQLCostCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (map[string]float64, error) {
	if s.DB == nil {
		return nil, errors.New("cost cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get cost cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	q := `
	SELECT destination, cost
    FROM cost_cache
    WHERE origin = $1
        AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin, uniq)
	if err != nil {
		return nil, fmt.Errorf("get cost cache: query cost_cache table: %w", err)
	}
	defer rows.Close()

	return scanCosts(rows, len(uniq))
}

// Store many cached costs for a single origin.
func (s *SQLCostCache) PutMany(
	ctx context.Context,
	origin string,
	costs map[string]float64,
) error {
	if s.DB == nil {
		return errors.New("cost cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert cost cache: origin must not be empty")
	}

	if len(costs) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert cost cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cost_cache (origin, destination, cost)
    VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET cost = EXCLUDED.cost;
	`)
	if err != nil {
		return fmt.Errorf("insert cost cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, c := range costs {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert cost cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, c); err != nil {
			return fmt.Errorf("insert cost cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert cost cache commit: %w", err)
	}

	return nil
}
