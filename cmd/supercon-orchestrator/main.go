// Supercon Orchestrator — выполняет runs.
//
// Orchestrator:
//   - Получает новые runs из RabbitMQ и через polling БД
//   - Выполняет workflow расчёта Tc в <WORK_ROOT>/<run_id>
//   - Сохраняет стадии и результаты, публикует события
//   - Архивирует артефакты в S3 (если задан S3_ENDPOINT)
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/supercon/internal/artifact"
	"github.com/shaiso/supercon/internal/mq"
	"github.com/shaiso/supercon/internal/orchestrator"
	"github.com/shaiso/supercon/internal/repo"
	"github.com/shaiso/supercon/internal/telemetry"
	"github.com/shaiso/supercon/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting supercon-orchestrator")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	if err := repo.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	cfg := orchestrator.Config{
		Executor:  worker.NewProcessExecutor(worker.ProcessConfig{Logger: logger}),
		PseudoDir: os.Getenv("QE_PSPDIR"),
		Observer:  telemetry.StageMetrics{},
		Runs:      repo.NewRunRepo(pool),
		Stages:    repo.NewStageRepo(pool),
		WorkRoot:  os.Getenv("WORK_ROOT"),
		Logger:    logger,
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		} else {
			logger.Debug("topology ready", "layout", mq.TopologyInfo())
		}

		cfg.Conn = mqConn
		cfg.Publisher = mq.NewPublisher(mqConn, logger)
	}

	// S3 архив артефактов
	s3cfg, err := artifact.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid artifact storage config", "error", err)
		os.Exit(1)
	}
	if s3cfg.Enabled() {
		store, err := artifact.NewStore(s3cfg)
		if err != nil {
			logger.Error("failed to create artifact store", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn("artifact bucket not available, archiving disabled", "error", err)
		} else {
			cfg.Archiver = store
			logger.Info("artifact archiving enabled", "endpoint", s3cfg.Endpoint, "bucket", s3cfg.Bucket)
		}
	}

	orch := orchestrator.New(cfg)

	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		state := "ok"
		if cfg.Conn != nil && !cfg.Conn.IsConnected() {
			// брокер недоступен, runs подбираются polling
			state = "ok (amqp reconnecting)"
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "%s, queued=%d", state, orch.QueuedRuns())
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("ORCH_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	orch.Stop()
	logger.Info("supercon-orchestrator stopped")
}
