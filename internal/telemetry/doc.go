// Package telemetry provides OpenTelemetry instrumentation for assetd.
//
// # Overview
//
// This package implements distributed tracing and metrics collection using
// the OpenTelemetry Go SDK. Telemetry data is exported over OTLP (gRPC by
// default, http/protobuf optionally) to a collector.
//
// # Usage
//
// Create a telemetry instance:
//
//	cfg := telemetry.NewDefaultConfig()
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
// Use tracer and meter:
//
//	tracer := tel.Tracer("assetd.registry")
//	ctx, span := tracer.Start(ctx, "assets.register")
//	defer span.End()
//
//	meter := tel.Meter("assetd.registry")
//	counter, _ := meter.Int64Counter("assetd.assets.registered_total")
//	counter.Add(ctx, 1)
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  service_name: "assetd"
//	  sampling:
//	    rate: 1.0  # 100% in dev, lower in prod
//	    always_on_errors: true
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// # Error Handling
//
// Telemetry failures do not crash the registry. If providers cannot be
// initialized, the instance degrades to no-op tracers and meters and the
// cause is reported through Health().
//
// # Testing
//
// Use TestTelemetry for tests:
//
//	tt := telemetry.NewTestTelemetry()
//	tracer := tt.Tracer("test")
//	_, span := tracer.Start(ctx, "test-span")
//	span.End()
//	tt.AssertSpanExists(t, "test-span")
package telemetry
