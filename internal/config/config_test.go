package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Empty variables are ignored, so this shields the test from the host environment.
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "CACHE_TTL", "DEFAULT_STRATEGY", "COMPARE_PARALLELISM", "RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/app.db", cfg.DBPath)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "savings-merge", cfg.DefaultStrategy)
	assert.Equal(t, 2, cfg.CompareParallelism)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://cvrp@localhost/cvrp")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://cvrp@localhost/cvrp", cfg.DatabaseURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.RateLimitBurst)
}

func TestFromViperValidation(t *testing.T) {
	testCases := []struct {
		name string
		set  map[string]any
	}{
		{name: "postgres without url", set: map[string]any{"DB_DRIVER": "postgres"}},
		{name: "unknown driver", set: map[string]any{"DB_DRIVER": "mysql"}},
		{name: "sqlite without path", set: map[string]any{"DB_PATH": " "}},
		{name: "zero parallelism", set: map[string]any{"COMPARE_PARALLELISM": 0}},
		{name: "negative ttl", set: map[string]any{"CACHE_TTL": "-1m"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			for k, val := range tc.set {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("SEED_PATH", "custom.json")
	assert.Equal(t, "custom.json", Get("SEED_PATH", "fallback.json"))
	assert.Equal(t, "fallback.json", Get("CVRP_TEST_UNSET_KEY", "fallback.json"))
}
