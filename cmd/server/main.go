package main

import (
	"context"
	"cvrp-route-service/internal/adapters/cache"
	"cvrp-route-service/internal/adapters/distance"
	"cvrp-route-service/internal/adapters/repositories"
	"cvrp-route-service/internal/api"
	"cvrp-route-service/internal/config"
	"cvrp-route-service/internal/platform/db"
	"cvrp-route-service/internal/platform/obs"
	"cvrp-route-service/internal/ports"
	"cvrp-route-service/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// stores groups the driver-specific adapters behind their ports.
type stores struct {
	instances ports.InstanceRepository
	runs      ports.SolveRunRepository
	costs     ports.CostCache
}

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := services.StrategyByName(cfg.DefaultStrategy); err != nil {
		return fmt.Errorf("DEFAULT_STRATEGY: %w", err)
	}

	dsn := cfg.DBPath
	if cfg.DBDriver == db.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	conn, err := db.Open(ctx, cfg.DBDriver, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	st, err := initStores(ctx, cfg.DBDriver, conn)
	if err != nil {
		return err
	}

	// The routing-engine matrix source is optional; without a key only matrix and
	// Euclidean instances are accepted.
	var matrix ports.MatrixSource
	if cfg.ORSAPIKey != "" {
		src, err := distance.NewORSMatrixSource(cfg.ORSAPIKey, logger,
			distance.WithORSBaseURL(cfg.ORSBaseURL),
			distance.WithORSProfile(cfg.ORSProfile),
			distance.WithORSCostCache(st.costs),
		)
		if err != nil {
			return err
		}
		matrix = src
	}

	// Seed demo instances on startup for local runs.
	if cfg.SeedPath != "" {
		n, err := repositories.SeedInstances(ctx, st.instances, cfg.SeedPath, matrix)
		if err != nil {
			return err
		}
		logger.Info("seeded instances", zap.Int("count", n), zap.String("path", cfg.SeedPath))
	}

	var solutions ports.SolutionCache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisSolutionCacheFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			// A missing cache only costs recomputation.
			logger.Warn("redis solution cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			solutions = rc
		}
	}

	svc := services.NewSolveService(solutions, st.runs, logger)
	svc.DefaultStrategy = cfg.DefaultStrategy
	svc.Parallelism = cfg.CompareParallelism

	router := api.NewRouter(api.Deps{
		Service:        svc,
		Instances:      st.instances,
		Runs:           st.runs,
		Matrix:         matrix,
		Log:            logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Timeouts leave room for cold-cache routing-engine matrix calls.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DBDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initStores(ctx context.Context, driver string, conn *sql.DB) (stores, error) {
	switch driver {
	case db.DriverPostgres:
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			return stores{}, fmt.Errorf("init stores: %w", err)
		}
		return stores{
			instances: repositories.NewPostgresInstanceRepository(conn),
			runs:      repositories.NewPostgresRunRepository(conn),
			costs:     cache.NewSQLCostCache(conn),
		}, nil
	default:
		if err := repositories.InitSchema(ctx, conn); err != nil {
			return stores{}, fmt.Errorf("init stores: %w", err)
		}
		return stores{
			instances: repositories.NewSqliteInstanceRepository(conn),
			runs:      repositories.NewSqliteRunRepository(conn),
			costs:     cache.NewSqliteCostCache(conn),
		}, nil
	}
}
