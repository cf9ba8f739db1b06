package workflows

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fyrsmithlabs/assetd/internal/workflows"

// Metrics for workflow activities
var (
	activityDuration     metric.Float64Histogram
	activityErrorCounter metric.Int64Counter
)

// initMetrics initializes OpenTelemetry metrics for workflow activities.
// This is called once during package initialization.
func initMetrics() {
	meter := otel.Meter(instrumentationName)

	var err error

	activityDuration, err = meter.Float64Histogram(
		"assetd.workflows.activity.duration",
		metric.WithDescription("Duration of workflow activity executions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create activity duration: %v", err))
	}

	activityErrorCounter, err = meter.Int64Counter(
		"assetd.workflows.activity.errors",
		metric.WithDescription("Number of activity execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create activity error counter: %v", err))
	}
}

func init() {
	initMetrics()
}

// recordActivity records duration and error counts for one activity run.
func recordActivity(ctx context.Context, name string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("activity", name))
	activityDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		activityErrorCounter.Add(ctx, 1, attrs)
	}
}
