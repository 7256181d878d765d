package cache

import (
	"context"
	"cvrp-route-service/internal/adapters/repositories"
	"cvrp-route-service/internal/platform/db"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteCostCache(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSqlite(ctx, ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(ctx, conn))

	c := NewSqliteCostCache(conn)

	hits, err := c.GetMany(ctx, "a", []string{"b", "c"})
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, c.PutMany(ctx, "a", map[string]float64{"b": 1.5, "c": 2}))
	require.NoError(t, c.PutMany(ctx, "a", map[string]float64{"c": 3}))

	hits, err = c.GetMany(ctx, "a", []string{"b", "c", "c", " ", "d"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"b": 1.5, "c": 3}, hits)

	assert.Error(t, c.PutMany(ctx, "", map[string]float64{"b": 1}))
	assert.Error(t, c.PutMany(ctx, "a", map[string]float64{" ": 1}))
}
