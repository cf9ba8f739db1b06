// Package main provides a Temporal worker for asset pipeline workflows.
//
// This worker executes producer and consumer flows against the registry's
// object store using Temporal's durable execution engine.
//
// Usage:
//
//	TEMPORAL_HOST=localhost:7233 \
//	STORAGE_BASE_URL=file:///var/lib/assetd \
//	assetd-worker
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/config"
	"github.com/fyrsmithlabs/assetd/internal/events"
	"github.com/fyrsmithlabs/assetd/internal/logging"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/store"
	"github.com/fyrsmithlabs/assetd/internal/workflows"
)

// TaskQueue is the Temporal task queue the worker listens on.
const TaskQueue = "asset-pipeline-queue"

// workerConfig holds worker configuration.
type workerConfig struct {
	TemporalHost string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Create root context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize logging
	logCfg := logging.NewDefaultConfig()
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration
	wcfg := loadWorkerConfig()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info(ctx, "asset pipeline worker starting",
		zap.String("temporal_host", wcfg.TemporalHost),
		zap.String("storage", cfg.Storage.BaseURL),
	)

	// Connect to NATS when eventing is configured
	var nc *nats.Conn
	if cfg.NATS.URL != "" {
		nc, err = nats.Connect(cfg.NATS.URL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(5),
			nats.ReconnectWait(1*time.Second),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS at %s: %w", cfg.NATS.URL, err)
		}
		defer nc.Close()

		logger.Info(ctx, "connected to NATS", zap.String("url", cfg.NATS.URL))
	}

	// Open the object store the activities write to
	objects, err := store.New(store.Config{BaseURL: cfg.Storage.BaseURL})
	if err != nil {
		return fmt.Errorf("opening object store: %w", err)
	}
	defer func() { _ = objects.Close() }()

	// Load the manifest catalog when configured
	var catalog *manifest.Catalog
	if cfg.Catalog.Root != "" {
		catalog, err = manifest.LoadCatalog(cfg.Catalog.Root)
		if err != nil {
			return fmt.Errorf("loading asset catalog: %w", err)
		}
		logger.Info(ctx, "catalog loaded", zap.Int("assets", catalog.Len()))
	}

	// Create the registry service backing the activities
	svc, err := assets.NewService(nil, objects, catalog, events.NewPublisher(nc), logger.Underlying())
	if err != nil {
		return fmt.Errorf("creating registry service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	activities, err := workflows.NewActivities(svc)
	if err != nil {
		return fmt.Errorf("creating activities: %w", err)
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: wcfg.TemporalHost,
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	logger.Info(ctx, "temporal client connected", zap.String("host", wcfg.TemporalHost))

	// Create worker
	w := worker.New(c, TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.ProducerWorkflow)
	w.RegisterWorkflow(workflows.ConsumerWorkflow)

	// Register activities
	w.RegisterActivity(activities)

	logger.Info(ctx, "worker configured",
		zap.String("task_queue", TaskQueue),
	)

	// Start worker in background
	workerErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "worker starting")
		workerErrors <- w.Run(worker.InterruptCh())
	}()

	// Wait for shutdown signal or worker error
	select {
	case err := <-workerErrors:
		if err != nil {
			return fmt.Errorf("worker error: %w", err)
		}
	case <-ctx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	// Worker stops automatically on interrupt signal
	logger.Info(ctx, "worker stopped gracefully")
	return nil
}

func loadWorkerConfig() *workerConfig {
	temporalHost := os.Getenv("TEMPORAL_HOST")
	if temporalHost == "" {
		temporalHost = "localhost:7233"
	}

	return &workerConfig{
		TemporalHost: temporalHost,
	}
}
