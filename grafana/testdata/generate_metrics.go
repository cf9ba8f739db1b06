// Package testdata provides utilities for generating sample metrics data
// to test Grafana dashboards without using real production data.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics for testing dashboards. Names match the Prometheus exposition
// of the OpenTelemetry instruments assetd registers.
var (
	// Asset registry metrics
	assetsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetd_assets_registered_total",
			Help: "Total asset versions registered",
		},
		[]string{"kind", "project"},
	)
	assetsRetrieved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetd_assets_retrieved_total",
			Help: "Total asset versions retrieved",
		},
		[]string{"kind", "project"},
	)

	// HTTP server metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetd_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetd_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"method", "endpoint", "status"},
	)
	httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetd_http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint", "status"},
	)
	httpActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetd_http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	// Workflow activity metrics
	workflowActivityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetd_workflows_activity_duration_seconds",
			Help:    "Activity execution duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"activity"},
	)
	workflowActivityErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetd_workflows_activity_errors_total",
			Help: "Total activity errors",
		},
		[]string{"activity"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		// Assets
		assetsRegistered,
		assetsRetrieved,
		// HTTP
		httpRequestsTotal,
		httpRequestDuration,
		httpResponseSize,
		httpActiveRequests,
		// Workflows
		workflowActivityDuration,
		workflowActivityErrors,
	)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	// Generate initial sample data
	generateSampleData()

	// Start background goroutine to continuously generate data
	ctx, cancel := context.WithCancel(context.Background())
	go generateContinuousData(ctx)

	// Serve metrics
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
		server.Shutdown(context.Background())
	}()

	fmt.Printf("Sample metrics server running on http://localhost:%s/metrics\n", port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println("\nTo use with Prometheus, add this to prometheus.yml:")
	fmt.Printf("  - job_name: 'assetd-test'\n    static_configs:\n      - targets: ['localhost:%s']\n", port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func generateSampleData() {
	projects := []string{"assetd-demo", "fraud-model", "churn-pipeline"}
	kinds := []string{"data", "model"}

	// Registration and retrieval traffic per project
	for i := 0; i < 60; i++ {
		assetsRegistered.WithLabelValues(randomChoice(kinds), randomChoice(projects)).Inc()
	}
	for i := 0; i < 200; i++ {
		assetsRetrieved.WithLabelValues(randomChoice(kinds), randomChoice(projects)).Inc()
	}

	// HTTP traffic across the API surface
	endpoints := []string{
		"/health",
		"/api/v1/status",
		"/api/v1/scope/resolve",
		"/api/v1/branch/sanitize",
		"/api/v1/assets/:kind/register",
		"/api/v1/assets/:kind/get",
		"/api/v1/assets/:kind/:id/versions",
	}
	methods := []string{"GET", "POST"}
	statuses := []string{"200", "201", "400", "404", "500"}
	for i := 0; i < 300; i++ {
		endpoint := randomChoice(endpoints)
		method := randomChoice(methods)
		status := randomChoice(statuses)
		httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(rand.Float64() * 0.5)
		httpResponseSize.WithLabelValues(method, endpoint, status).Observe(float64(rand.Intn(100000) + 100))
	}
	httpActiveRequests.Set(float64(rand.Intn(5)))

	// Workflow activity traffic
	activities := []string{"StartRun", "RegisterAsset", "GetAsset"}
	for i := 0; i < 100; i++ {
		workflowActivityDuration.WithLabelValues(randomChoice(activities)).Observe(rand.Float64() * 2.0)
	}
	for i := 0; i < 8; i++ {
		workflowActivityErrors.WithLabelValues(randomChoice(activities)).Inc()
	}
}

func generateContinuousData(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	projects := []string{"assetd-demo", "fraud-model", "churn-pipeline"}
	kinds := []string{"data", "model"}
	activities := []string{"StartRun", "RegisterAsset", "GetAsset"}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Add some random activity
			if rand.Float64() > 0.5 {
				assetsRegistered.WithLabelValues(randomChoice(kinds), randomChoice(projects)).Inc()
			}
			if rand.Float64() > 0.2 {
				assetsRetrieved.WithLabelValues(randomChoice(kinds), randomChoice(projects)).Inc()
			}
			if rand.Float64() > 0.3 {
				endpoint := randomChoice([]string{"/api/v1/assets/:kind/register", "/api/v1/assets/:kind/get", "/health"})
				status := randomChoice([]string{"200", "201", "404"})
				httpRequestsTotal.WithLabelValues("POST", endpoint, status).Inc()
				httpRequestDuration.WithLabelValues("POST", endpoint, status).Observe(rand.Float64() * 0.5)
				httpResponseSize.WithLabelValues("POST", endpoint, status).Observe(float64(rand.Intn(100000) + 100))
			}
			if rand.Float64() > 0.6 {
				activity := randomChoice(activities)
				workflowActivityDuration.WithLabelValues(activity).Observe(rand.Float64() * 2.0)
				if rand.Float64() > 0.9 {
					workflowActivityErrors.WithLabelValues(activity).Inc()
				}
			}
			httpActiveRequests.Set(float64(rand.Intn(5)))
		}
	}
}

func randomChoice(choices []string) string {
	return choices[rand.Intn(len(choices))]
}
