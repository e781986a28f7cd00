package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ordinator/ordinator/internal/api"
	"github.com/ordinator/ordinator/internal/config"
	"github.com/ordinator/ordinator/internal/ingestion"
	"github.com/ordinator/ordinator/internal/logging"
	"github.com/ordinator/ordinator/internal/metrics"
	"github.com/ordinator/ordinator/internal/orchestrator"
	"github.com/ordinator/ordinator/internal/repository"
	"github.com/ordinator/ordinator/internal/repository/postgres"
	"github.com/ordinator/ordinator/internal/repository/snapshot"
	"github.com/ordinator/ordinator/internal/schedenv"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewProductionLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	env, err := loadEnvironment(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to load scheduling environment", "error", err)
	}

	db, audit := connectDatabase(cfg, logger)
	if db != nil {
		defer db.Close()
	}

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
	orch := orchestrator.New(env, cfg, reg, audit, logger)

	for _, asset := range env.Assets() {
		if err := orch.CreateAsset(context.Background(), asset); err != nil {
			logger.Errorw("failed to start asset actors", "asset", asset, "error", err)
		}
	}

	router := api.NewRouter(orch)
	go func() {
		logger.Infow("starting http server", "addr", cfg.ServerAddr)
		if err := router.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("http server failed", "error", err)
		}
	}()

	asynqServer, ingestErrCh := startIngestionServer(cfg, orch, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Infow("shutdown signal received")
	case err := <-ingestErrCh:
		if err != nil {
			logger.Errorw("ingestion server failed", "error", err)
		}
	}

	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(); err != nil {
		logger.Errorw("http server shutdown error", "error", err)
	}
	_ = shutdownCtx

	for _, asset := range orch.Assets() {
		orch.DeleteAsset(asset)
	}
}

// loadEnvironment restores the Scheduling Environment from the on-disk
// snapshot fallback (§6 "Persisted state"). A missing snapshot file is not
// an error: the engine starts with an empty environment and waits for the
// first re-ingestion run to populate it.
func loadEnvironment(cfg config.Config, logger *zap.SugaredLogger) (*schedenv.SchedulingEnvironment, error) {
	store := snapshot.NewFileStore()
	if _, err := store.Load(context.Background(), cfg.SnapshotPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Infow("no snapshot found, starting with an empty environment", "path", cfg.SnapshotPath)
			return schedenv.New(), nil
		}
		return nil, err
	}

	snap, err := ingestion.NewFileSource(cfg.SnapshotPath).Fetch(context.Background())
	if err != nil {
		return nil, err
	}
	env, err := schedenv.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	logger.Infow("restored scheduling environment from snapshot", "path", cfg.SnapshotPath, "assets", len(env.Assets()))
	return env, nil
}

// connectDatabase opens the Postgres-backed audit trail when a DSN is
// configured. Postgres is optional infrastructure, same as Redis below: a
// deployment that doesn't need an audit trail runs with audit left nil, and
// the orchestrator simply skips recording objectives.
func connectDatabase(cfg config.Config, logger *zap.SugaredLogger) (*postgres.Database, repository.ObjectiveAuditRepository) {
	if cfg.PostgresDSN == "" {
		logger.Infow("audit trail disabled: no postgres DSN configured")
		return nil, nil
	}

	db, err := postgres.NewDatabase(cfg.PostgresDSN)
	if err != nil {
		logger.Warnw("audit trail disabled: failed to connect to postgres", "error", err)
		return nil, nil
	}
	logger.Infow("connected to postgres audit trail")
	return db, db.ObjectiveAuditRepository()
}

// startIngestionServer wires the re-ingestion Asynq consumer if Redis is
// reachable. Redis is optional for a deployment that never re-ingests, so a
// connection failure here is logged and ingestion is simply disabled
// rather than aborting startup.
func startIngestionServer(cfg config.Config, orch *orchestrator.Orchestrator, logger *zap.SugaredLogger) (*asynq.Server, <-chan error) {
	errCh := make(chan error, 1)

	probe, err := ingestion.NewScheduler(cfg.RedisAddr)
	if err != nil {
		logger.Warnw("ingestion disabled: redis unavailable", "error", err)
		return nil, errCh
	}
	probe.Close()

	source := ingestion.NewFileSource(cfg.SnapshotPath)
	snapshots := snapshot.NewFileStore()
	handlers := ingestion.NewHandlers(source, orch, snapshots, cfg.SnapshotPath, logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{Concurrency: 4},
	)
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	go func() {
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	return srv, errCh
}
