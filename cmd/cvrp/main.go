package main

import (
	"context"
	"cvrp-route-service/internal/adapters/cache"
	"cvrp-route-service/internal/adapters/distance"
	"cvrp-route-service/internal/adapters/instancefile"
	"cvrp-route-service/internal/adapters/repositories"
	"cvrp-route-service/internal/config"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/platform/db"
	"cvrp-route-service/internal/platform/obs"
	"cvrp-route-service/internal/ports"
	"cvrp-route-service/internal/services"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Exit codes: 0 complete solution, 1 failure, 2 partial solution.
const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

type options struct {
	file      string
	name      string
	strategy  string
	compare   bool
	fleet     int
	asJSON    bool
	costCache string
	logLevel  string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.file, "file", "data/seeds/instances.json", "instance file (.json, .yaml, .yml)")
	flag.StringVar(&opts.name, "name", "", "instance name inside the file (default: first entry)")
	flag.StringVar(&opts.strategy, "strategy", services.StrategySavingsMerge, "construction strategy")
	flag.BoolVar(&opts.compare, "compare", false, "run every strategy and report the best")
	flag.IntVar(&opts.fleet, "fleet", 0, "override the instance fleet size")
	flag.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a text report")
	flag.StringVar(&opts.costCache, "cost-cache", "", "sqlite file caching routing-engine costs")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.Parse()

	logger, err := obs.NewLogger(opts.logLevel, "console")
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code, err := run(ctx, opts, logger, os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cvrp:", err)
	}

	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, opts options, logger *zap.Logger, out io.Writer) (int, error) {
	name, inst, err := loadInstance(ctx, opts, logger)
	if err != nil {
		return exitFailed, err
	}

	if opts.compare {
		results, best, err := services.CompareStrategies(ctx, inst, services.Strategies(), len(services.Strategies()), logger)
		if err != nil {
			return exitFailed, err
		}
		if err := writeComparison(out, name, inst, results, best, opts.asJSON); err != nil {
			return exitFailed, err
		}
		if best < 0 {
			return exitPartial, nil
		}
		return exitOK, nil
	}

	strategy, err := services.StrategyByName(opts.strategy)
	if err != nil {
		return exitFailed, err
	}

	sol, solveErr := services.NewSolver(strategy, logger).Solve(ctx, inst)
	if sol == nil {
		return exitFailed, solveErr
	}
	if err := writeSolution(out, name, inst, sol, solveErr, opts.asJSON); err != nil {
		return exitFailed, err
	}
	if solveErr != nil {
		return exitPartial, nil
	}
	return exitOK, nil
}

func loadInstance(ctx context.Context, opts options, logger *zap.Logger) (string, *domain.ProblemInstance, error) {
	files, err := instancefile.Load(opts.file)
	if err != nil {
		return "", nil, err
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("%s: no instances", opts.file)
	}

	f := files[0]
	if opts.name != "" {
		found := false
		for _, candidate := range files {
			if candidate.Name == opts.name {
				f, found = candidate, true
				break
			}
		}
		if !found {
			return "", nil, fmt.Errorf("%s: no instance named %q", opts.file, opts.name)
		}
	}

	src, closeSrc, err := matrixSource(ctx, opts, logger)
	if err != nil {
		return "", nil, err
	}
	defer closeSrc()

	inst, err := f.Build(ctx, src)
	if err != nil {
		return "", nil, err
	}

	if opts.fleet > 0 {
		inst, err = inst.WithFleetSize(opts.fleet)
		if err != nil {
			return "", nil, err
		}
	}
	return f.Name, inst, nil
}

// matrixSource is nil unless ORS_API_KEY is set.
func matrixSource(ctx context.Context, opts options, logger *zap.Logger) (ports.MatrixSource, func(), error) {
	noop := func() {}

	key := config.Get("ORS_API_KEY", "")
	if key == "" {
		return nil, noop, nil
	}

	orsOpts := []distance.ORSOption{
		distance.WithORSBaseURL(config.Get("ORS_BASE_URL", "https://api.openrouteservice.org")),
		distance.WithORSProfile(config.Get("ORS_PROFILE", "driving-car")),
	}

	closeFn := noop
	if opts.costCache != "" {
		conn, err := db.OpenSqlite(ctx, opts.costCache)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		orsOpts = append(orsOpts, distance.WithORSCostCache(cache.NewSqliteCostCache(conn)))
		closeFn = func() { _ = conn.Close() }
	}

	src, err := distance.NewORSMatrixSource(key, logger, orsOpts...)
	if err != nil {
		closeFn()
		return nil, noop, fmt.Errorf("routing engine: %w", err)
	}
	return src, closeFn, nil
}
