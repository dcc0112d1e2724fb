package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-scenario-service/internal/adapters/cache"
	"route-scenario-service/internal/adapters/optimizer"
	"route-scenario-service/internal/adapters/repositories"
	"route-scenario-service/internal/api"
	"route-scenario-service/internal/config"
	"route-scenario-service/internal/platform/db"
	"route-scenario-service/internal/platform/obs"
	"route-scenario-service/internal/ports"
	"route-scenario-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, optimizer backend, result cache)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireOptimizer(); err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer obs.Install(logger)()
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}

func run(cfg config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := db.Connect(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, dialect, cfg.SeedPath, logger); err != nil {
		return err
	}

	client, err := optimizer.NewClient(cfg.OptimizerURL, cfg.OptimizerTimeout)
	if err != nil {
		return err
	}

	resultCache, closeCache, err := newResultCache(ctx, cfg, conn, dialect)
	if err != nil {
		return err
	}
	defer closeCache()

	// Identical inputs are optimized once; the backend is the scarce resource.
	opt := optimizer.NewCachingOptimizer(client, resultCache)
	repo := repositories.NewSQLScenarioRepository(conn, dialect)

	router := api.NewRouter(api.Deps{
		Scenarios:   services.NewScenarioService(repo, opt, client),
		Batches:     services.NewBatchOrchestrator(client, opt, repo),
		Comparer:    services.NewComparer(repo),
		CORSOrigins: cfg.CORSOrigins,
	})

	// Timeouts are tuned for slow optimizer calls; batch streams lift the
	// write deadline per request.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.OptimizerTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "optimizer", cfg.OptimizerURL)
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

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string, logger *zap.SugaredLogger) error {
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logger.Infow("seeded scenarios", "path", seedPath, "inserted", n)

	return nil
}

// newResultCache prefers redis when configured and falls back to the
// result_cache table of the scenario database.
func newResultCache(ctx context.Context, cfg config.Config, conn *sql.DB, dialect db.Dialect) (ports.ResultCache, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewSQLResultCache(conn, dialect, cfg.ResultCacheTTL), func() {}, nil
	}

	rc, err := cache.NewRedisResultCacheFromURL(ctx, cfg.RedisURL, cfg.ResultCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { _ = rc.Close() }, nil
}
