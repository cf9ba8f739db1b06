// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// Logging wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Dual output (stdout + OpenTelemetry)
//   - Automatic context field injection (trace_id, asset scope, request ID)
//   - Secret redaction at the encoder
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
// Create a logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx := logging.WithScope(ctx, &logging.Scope{Project: "demo", Branch: "user_alice"})
//	ctx = logging.WithRequestID(ctx, "req_123")
//	logger.Info(ctx, "version registered", zap.String("asset_id", id))
//
// Output includes automatic correlation:
//
//	{
//	  "ts": "2026-08-25T10:15:30Z",
//	  "level": "info",
//	  "msg": "version registered",
//	  "trace_id": "abc123",
//	  "scope.project": "demo",
//	  "scope.branch": "user_alice",
//	  "request.id": "req_123",
//	  "asset_id": "sample_data"
//	}
package logging
