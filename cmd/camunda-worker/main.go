// camunda-worker — долгоживущий job worker для service tasks demo-процесса.
//
// Worker:
//   - Активирует jobs типа processData (или demo.job_type из конфигурации)
//   - Завершает их с processed=true и processedAt
//   - При ошибке отклоняет job с retries 0
//   - Отдаёт /healthz и /metrics
//
// Конфигурация: CAMUNDA_REST_ADDRESS, CAMUNDA_CONFIG (YAML), METRICS_ADDR,
// RABBITMQ_URL (опционально, события job.completed / job.failed).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/config"
	"github.com/shaiso/camunda-demo/internal/demo"
	"github.com/shaiso/camunda-demo/internal/mq"
	"github.com/shaiso/camunda-demo/internal/telemetry"
	"github.com/shaiso/camunda-demo/internal/worker"
)

const defaultMetricsAddr = ":8082"

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting camunda-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CAMUNDA_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	bcfg := cfg.BrokerClientConfig()
	bcfg.Logger = logger
	client := broker.NewClient(bcfg)
	defer client.Close()

	opts := demo.Options{Logger: logger}

	// RabbitMQ (опционально)
	if cfg.RabbitMQURL != "" {
		conn, err := mq.NewConnection(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			opts.Events = mq.NewPublisher(conn, logger)
		}
	}

	coord := demo.New(client, cfg.Demo, opts)

	registry := worker.NewRegistry()
	registry.Register(coord.Config().JobType, coord.JobHandler())

	runtime := worker.NewRuntime(registry, worker.Config{
		Client: client,
		Name:   coord.Config().WorkerName,
		Logger: logger,
	})

	if err := runtime.Open(ctx); err != nil {
		logger.Error("failed to open job workers", "error", err)
		os.Exit(1)
	}

	// HTTP: /healthz + /metrics
	addr := cfg.MetricsAddr
	if addr == "" {
		addr = defaultMetricsAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           telemetry.NewMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	runtime.Close()
	logger.Info("camunda-worker stopped", "job_types", runtime.Types())
}
