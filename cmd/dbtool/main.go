package main

import (
	"context"
	"cvrp-route-service/internal/adapters/repositories"
	"cvrp-route-service/internal/config"
	"cvrp-route-service/internal/platform/db"
	"cvrp-route-service/internal/platform/obs"
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool prepares a Postgres database: schema plus seed instances.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	logger, err := obs.NewLogger(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "console"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.OpenPostgres(ctx, databaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/instances.json")
	if err := initAndSeed(ctx, logger, conn, seedPath); err != nil {
		logger.Fatal("init and seed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, logger *zap.Logger, conn *sql.DB, seedPath string) error {
	logger.Info("initializing database schema")
	if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info("schema ready")

	logger.Info("seeding database", zap.String("path", seedPath))
	n, err := repositories.SeedInstances(ctx, repositories.NewPostgresInstanceRepository(conn), seedPath, nil)
	if err != nil {
		return err
	}
	logger.Info("seeding complete", zap.Int("instances", n))

	return nil
}
