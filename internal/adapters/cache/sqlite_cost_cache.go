package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache for origin->destination costs.
// Keys are expected to be consistent (e.g., already normalized)
// by the caller.
type SqliteCostCache struct {
	DB *sql.DB
}

func NewSqliteCostCache(db *sql.DB) *SqliteCostCache {
	return &SqliteCostCache{DB: db}
}

// Fetch cached costs for one origin and multiple destinations.
func (s *SqliteCostCache) GetMany(
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

	ph := make([]string, len(uniq))
	args := make([]any, 0, 1+len(uniq))
	args = append(args, origin)
	for i, d := range uniq {
		ph[i] = "?"
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        destination,
        cost
    FROM cost_cache
    WHERE origin = ?
        AND destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get cost cache: query cost_cache table: %w", err)
	}
	defer rows.Close()

	return scanCosts(rows, len(uniq))
}

// Store many cached costs for a single origin.
func (s *SqliteCostCache) PutMany(ctx context.Context, origin string, costs map[string]float64) error {
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
	INSERT OR REPLACE INTO cost_cache (
        origin,
        destination,
        cost
    )
    VALUES (?, ?, ?)
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

func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

func scanCosts(rows *sql.Rows, hint int) (map[string]float64, error) {
	out := make(map[string]float64, hint)
	for rows.Next() {
		var dest string
		var c float64
		if err := rows.Scan(&dest, &c); err != nil {
			return nil, fmt.Errorf("get cost cache: scan rows: %w", err)
		}
		out[dest] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get cost cache: row iteration: %w", err)
	}
	return out, nil
}
