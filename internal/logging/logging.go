// Package logging wraps logrus with service metadata and per-request
// trace IDs carried through context.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const traceIDKey contextKey = "trace_id"

// Logger is a logrus logger bound to a service name.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a Logger writing JSON lines to stderr. Level defaults to info
// when the supplied string does not parse.
func New(service, level string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &Logger{Logger: l, service: service}
}

// Service returns the service name the logger was created with.
func (l *Logger) Service() string {
	return l.service
}

// WithContext returns an entry annotated with the service name and the
// trace ID from ctx, when present.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.WithField("service", l.service)
	if id := GetTraceID(ctx); id != "" {
		entry = entry.WithField("trace_id", id)
	}
	return entry
}

// LogRequest emits one line per handled HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	}).Info("http request")
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithTraceID stores a trace ID in ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}
