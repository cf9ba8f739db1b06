// Assetd is the branch-scoped asset registry daemon.
//
// This binary starts the assetd HTTP server with full service
// initialization, including the object store, the manifest catalog with
// hot reload, NATS event publishing, and OpenTelemetry.
//
// Configuration is loaded from environment variables. See internal/config
// for details.
//
// Usage:
//
//	# Start server with defaults
//	assetd
//
//	# Configure via environment
//	SERVER_HTTP_PORT=8090 STORAGE_BASE_URL=file:///var/lib/assetd assetd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/config"
	"github.com/fyrsmithlabs/assetd/internal/events"
	"github.com/fyrsmithlabs/assetd/internal/httpapi"
	"github.com/fyrsmithlabs/assetd/internal/logging"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/store"
	"github.com/fyrsmithlabs/assetd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Parse command-line arguments
	flag.Parse()
	args := flag.Args()

	// Handle subcommands
	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  assetd           Start the assetd daemon\n")
			fmt.Fprintf(os.Stderr, "  assetd version   Show version information\n")
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("assetd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the assetd server and blocks until context is cancelled.
//
// This function initializes all dependencies and services:
//  1. Loads and validates configuration
//  2. Initializes telemetry and the logger
//  3. Opens infrastructure (NATS, object store, manifest catalog)
//  4. Creates the asset registry service
//  5. Starts the HTTP server with metrics endpoints
//  6. Performs graceful shutdown on context cancellation
//
// Returns http.ErrServerClosed on graceful shutdown.
func run(ctx context.Context) error {
	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize telemetry first so the logger can bridge into it
	telCfg := telemetry.NewDefaultConfig()
	telCfg.Enabled = cfg.Observability.EnableTelemetry
	telCfg.ServiceName = cfg.Observability.ServiceName
	telCfg.ServiceVersion = version

	tel, err := telemetry.New(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Initialize logger
	logger, err := initLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info(ctx, "Starting assetd",
		zap.Int("port", cfg.Server.Port),
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("storage", cfg.Storage.BaseURL),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	// Initialize infrastructure dependencies
	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info(ctx, "Dependencies initialized",
		zap.Bool("nats_connected", deps.natsConn != nil),
		zap.Bool("catalog_loaded", deps.catalog != nil))

	// Create the registry service
	svc, err := initService(cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize registry service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	// Create HTTP server
	srv, err := httpapi.NewServer(svc, deps.catalog, logger.Underlying(), &httpapi.Config{
		Host:      "0.0.0.0",
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	// HTTP metrics middleware plus the Prometheus scrape endpoint
	httpMetrics := httpapi.NewHTTPMetrics(logger.Underlying())
	srv.Echo().Use(httpMetrics.MetricsMiddleware())
	srv.Echo().GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	logger.Info(ctx, "Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
		zap.String("api_prefix", "/api/v1"),
		zap.String("metrics_endpoint", "/metrics"))

	// Start server
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP server shutdown failed", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "Telemetry shutdown failed", zap.Error(err))
	}

	return http.ErrServerClosed
}

// dependencies holds all infrastructure dependencies.
type dependencies struct {
	natsConn *nats.Conn
	objects  store.Store
	catalog  *manifest.Catalog
	watcher  *manifest.Watcher
	logger   *logging.Logger
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.natsConn != nil {
		d.natsConn.Close()
	}
	if d.objects != nil {
		_ = d.objects.Close()
	}
}

// initLogger initializes the structured logger, bridging into the OTLP
// log pipeline when telemetry is enabled.
func initLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	if !cfg.Observability.EnableTelemetry {
		logCfg.Format = "console"
	}
	if tel.IsEnabled() {
		logCfg.Output.OTEL = true
		return logging.NewLogger(logCfg, tel.LoggerProvider())
	}
	return logging.NewLogger(logCfg, nil)
}

// initDependencies initializes all infrastructure dependencies.
//
// This function:
//  1. Connects to NATS when eventing is configured
//  2. Opens the object store
//  3. Loads the manifest catalog and starts its watcher
func initDependencies(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*dependencies, error) {
	deps := &dependencies{logger: logger}

	// Connect to NATS. Eventing is optional: no URL, no publisher.
	if cfg.NATS.URL != "" {
		opts := []nats.Option{
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(5),
			nats.ReconnectWait(1 * time.Second),
		}
		if cfg.NATS.Token.IsSet() {
			opts = append(opts, nats.Token(cfg.NATS.Token.Value()))
		}

		nc, err := nats.Connect(cfg.NATS.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
		deps.natsConn = nc

		logger.Info(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))
	}

	// Open the object store
	objects, err := store.New(store.Config{BaseURL: cfg.Storage.BaseURL})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	deps.objects = objects

	logger.Info(ctx, "Object store opened", zap.String("base_url", cfg.Storage.BaseURL))

	// Load the manifest catalog
	if cfg.Catalog.Root != "" {
		catalog, err := manifest.LoadCatalog(cfg.Catalog.Root)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to load asset catalog: %w", err)
		}
		deps.catalog = catalog

		logger.Info(ctx, "Catalog loaded",
			zap.String("root", cfg.Catalog.Root),
			zap.Int("assets", catalog.Len()))

		// A broken watcher degrades to a static catalog, it never
		// blocks startup.
		if cfg.Catalog.Watch {
			watcher, err := manifest.NewWatcher(catalog, logger.Underlying())
			if err != nil {
				logger.Warn(ctx, "Failed to create catalog watcher", zap.Error(err))
			} else if err := watcher.Start(ctx); err != nil {
				logger.Warn(ctx, "Failed to start catalog watcher", zap.Error(err))
			} else {
				deps.watcher = watcher
			}
		}
	}

	return deps, nil
}

// initService creates the asset registry service.
func initService(cfg *config.Config, deps *dependencies, logger *logging.Logger) (assets.Service, error) {
	svcCfg := assets.DefaultServiceConfig()
	if cfg.Registry.MaxPayloadMB > 0 {
		svcCfg.MaxPayloadBytes = int64(cfg.Registry.MaxPayloadMB) << 20
	}

	return assets.NewService(svcCfg, deps.objects, deps.catalog, events.NewPublisher(deps.natsConn), logger.Underlying())
}
