package repositories

import (
	"context"
	"cvrp-route-service/internal/platform/db"
	"cvrp-route-service/internal/ports"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openPostgresDB connects to DATABASE_URL and skips the test when it is unset.
func openPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := db.OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitPostgresSchema(ctx, conn))
	require.NoError(t, InitPostgresSchema(ctx, conn))
	return conn
}

func TestPostgresInstanceRepository(t *testing.T) {
	ctx := context.Background()
	conn := openPostgresDB(t)
	repo := NewPostgresInstanceRepository(conn)

	name := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `DELETE FROM instances WHERE name = $1`, name)
	})

	inst := sampleInstance(t)
	require.NoError(t, repo.SaveInstance(ctx, name, inst))

	got, err := repo.GetInstance(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, inst.Customers(), got.Customers())
	assert.Equal(t, inst.Demands(), got.Demands())
	c, err := got.Cost(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, c)

	bigger, err := inst.WithFleetSize(4)
	require.NoError(t, err)
	require.NoError(t, repo.SaveInstance(ctx, name, bigger))

	list, err := repo.ListInstances(ctx)
	require.NoError(t, err)
	var found *ports.InstanceSummary
	for i := range list {
		if list[i].Name == name {
			found = &list[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 2, found.Customers)
	assert.Equal(t, 4, found.FleetSize)

	_, err = repo.GetInstance(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Error(t, repo.SaveInstance(ctx, " ", inst))
}

func TestPostgresRunRepository(t *testing.T) {
	ctx := context.Background()
	conn := openPostgresDB(t)
	repo := NewPostgresRunRepository(conn)

	name := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `DELETE FROM solve_runs WHERE instance_name = $1`, name)
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := ports.SolveRun{ID: uuid.NewString(), InstanceName: name, Strategy: "savings-merge", Outcome: "ok", Routes: 3, TotalCost: 105, Duration: 12 * time.Millisecond, CreatedAt: base}
	second := ports.SolveRun{ID: uuid.NewString(), InstanceName: name, Strategy: "nearest-neighbor", Outcome: "partial", ErrorKind: "fleet_exhausted", CacheHit: true, CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.SaveRun(ctx, first))
	require.NoError(t, repo.SaveRun(ctx, second))
	assert.Error(t, repo.SaveRun(ctx, ports.SolveRun{InstanceName: name}))

	got, err := repo.ListRuns(ctx, name, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.True(t, got[0].CacheHit)
	assert.Equal(t, "fleet_exhausted", got[0].ErrorKind)
	assert.Equal(t, 12*time.Millisecond, got[1].Duration)
	assert.True(t, base.Equal(got[1].CreatedAt))

	limited, err := repo.ListRuns(ctx, name, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}
