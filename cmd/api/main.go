package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kasa/internal/config"
	"kasa/internal/database"
	"kasa/internal/engine"
	"kasa/internal/handlers"
	"kasa/internal/logger"
	"kasa/internal/persistence"
)

// @title           Kasa API
// @version         1.0
// @description     Kasa is a personal finance ledger: categories, transactions, budgets and period summaries over a single in-memory engine.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	gateway, closeStore, err := openGateway(appConfig)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.Options{
		Gateway:      gateway,
		Debounce:     appConfig.RecomputeDebounce,
		SeedDefaults: appConfig.SeedDefaults,
	})
	eng.Load(ctx)

	router := handlers.NewRouter(eng, handlers.RouterConfig{CORSOrigins: appConfig.CORSOrigins})
	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting Kasa server on port %s (store: %s)", appConfig.Port, appConfig.StoreDriver)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		serveErr := srv.Shutdown(shutdownCtx)
		if err := eng.Close(shutdownCtx); err != nil {
			log.Errorw("final snapshot write failed", "pending", eng.Pending(), "error", err)
		}
		return serveErr
	})

	return g.Wait()
}

// openGateway picks the snapshot store named by STORE_DRIVER. The returned func
// releases any connection it opened.
func openGateway(cfg *config.Config) (persistence.Gateway, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		return persistence.NewMemoryGateway(), noop, nil

	case config.StoreFile:
		gw, err := persistence.NewFileGateway(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot directory: %w", err)
		}
		return gw, noop, nil

	default:
		dbManager, err := database.NewManager(database.NewConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
		}
		if err := dbManager.RunMigrations(); err != nil {
			_ = dbManager.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		closeDB := func() {
			if err := dbManager.Close(); err != nil {
				logger.Get().Warnw("database close failed", "error", err)
			}
		}
		return database.NewSnapshotGateway(dbManager.DB()), closeDB, nil
	}
}
