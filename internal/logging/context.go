package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 8)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	// Asset scope
	if scope := ScopeFromContext(ctx); scope != nil {
		fields = append(fields,
			zap.String("scope.project", scope.Project),
			zap.String("scope.branch", scope.Branch),
		)
		if scope.RunID != "" {
			fields = append(fields, zap.String("run.id", scope.RunID))
		}
	}

	// Request ID
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	return fields
}

// Context key types
type scopeCtxKey struct{}
type requestCtxKey struct{}

// Scope carries the asset scope a log line belongs to: which project and
// branch the operation touches, and the producing run when known.
type Scope struct {
	Project string
	Branch  string
	RunID   string
}

// Validation constants
const (
	maxScopeFieldLen = 128
	maxIDLen         = 128
)

// scopeFieldPattern allows alphanumeric, hyphen, underscore.
var scopeFieldPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateScopeField validates a scope field (project, branch).
func validateScopeField(field, name string) error {
	if field == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(field) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(field) > maxScopeFieldLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxScopeFieldLen)
	}
	if !scopeFieldPattern.MatchString(field) {
		return fmt.Errorf("%s contains invalid characters (must be alphanumeric, hyphen, underscore)", name)
	}
	return nil
}

// validateID validates a run or request ID.
func validateID(id, name string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxIDLen)
	}
	if !scopeFieldPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (must be alphanumeric, hyphen, underscore)", name)
	}
	return nil
}

// ScopeFromContext extracts the asset scope from context.
func ScopeFromContext(ctx context.Context) *Scope {
	if s, ok := ctx.Value(scopeCtxKey{}).(*Scope); ok {
		return s
	}
	return nil
}

// WithScope adds an asset scope to context.
// Panics if scope is nil or contains invalid field values. RunID is
// optional, project and branch are not.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	if scope == nil {
		panic("logging: scope cannot be nil")
	}
	if err := validateScopeField(scope.Project, "scope.Project"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	if err := validateScopeField(scope.Branch, "scope.Branch"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	if scope.RunID != "" {
		if err := validateID(scope.RunID, "scope.RunID"); err != nil {
			panic(fmt.Sprintf("logging: %v", err))
		}
	}
	return context.WithValue(ctx, scopeCtxKey{}, scope)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRequestID adds a request ID to context.
// Panics if requestID is empty or contains invalid characters.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if err := validateID(requestID, "requestID"); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// loggerCtxKey is the context key for Logger.
type loggerCtxKey struct{}

// WithLogger stores a logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the logger from context.
// Returns a nop logger if none is stored.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{zap: zap.NewNop(), config: NewDefaultConfig()}
}
