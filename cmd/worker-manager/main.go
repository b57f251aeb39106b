// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"cruise-decision-workers/internal/admin"
	"cruise-decision-workers/internal/common/camunda"
	"cruise-decision-workers/internal/common/config"
	"cruise-decision-workers/internal/common/logger"
	"cruise-decision-workers/internal/common/observability"
	"cruise-decision-workers/internal/decision"

	da "cruise-decision-workers/internal/workers/decision/decision-admin"
	rs "cruise-decision-workers/internal/workers/decision/rank-sailings"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("app", cfg.App.Name))

	obs := observability.New(cfg.App.Name, log)

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Storage ---
	b, err := connectBackends(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}

	defaults := weightsFromConfig(cfg.Decision.DefaultWeights)
	weightsStore := admin.NewWeightsStore(
		b.pgDB(), b.weightsCache(),
		time.Duration(cfg.Decision.WeightsCacheTTLs)*time.Second,
		defaults, log,
	)
	overrideStore := admin.NewOverrideStore(b.pgDB())

	auditWriter := decision.NewAuditWriter(
		b.auditSinks(cfg),
		cfg.Decision.AuditAsync,
		config.GetDuration(cfg.Decision.AuditTimeoutMs),
		log,
	)

	service := decision.NewService(b.inventoryRepository(), overrideStore, weightsStore, auditWriter, decision.ServiceConfig{
		DefaultWeights:   defaults,
		DefaultLimit:     cfg.Decision.DefaultLimit,
		MaxLimit:         cfg.Decision.MaxLimit,
		SlowRunThreshold: config.GetDuration(cfg.Decision.SlowRunMs),
	}, log)

	// --- Workers ---
	var workers []worker.JobWorker

	rankCfg := config.GetWorkerConfig(cfg, rs.TaskType)
	rankHandler := rs.NewHandler(
		&rs.Config{
			Timeout:     config.GetDuration(rankCfg.Timeout),
			BaseWeights: defaults,
		},
		service, weightsStore, obs, log,
	)
	workers = append(workers, camunda.StartWorker(zeebe.GetClient(), rs.TaskType, rankCfg, rankHandler.Handle, obs, log))

	adminCfg := config.GetWorkerConfig(cfg, da.TaskType)
	adminHandler := da.NewHandler(
		&da.Config{
			Timeout: config.GetDuration(adminCfg.Timeout),
		},
		da.Dependencies{
			Weights:   weightsStore,
			Overrides: overrideStore,
			Audits:    b.auditLister(cfg),
		},
		log,
	)
	workers = append(workers, camunda.StartWorker(zeebe.GetClient(), da.TaskType, adminCfg, adminHandler.Handle, obs, log))

	// --- Health & Metrics Server ---
	checks := map[string]readinessCheck{"zeebe": zeebe.HealthCheck}
	if b.pg != nil {
		checks["postgres"] = b.pg.Ping
	}
	if b.redis != nil {
		checks["redis"] = b.redis.Ping
	}
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newHealthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	camunda.StopWorkers(workers, log)
	auditWriter.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	b.Close(zapLog)

	zapLog.Info("Worker manager stopped")
}
