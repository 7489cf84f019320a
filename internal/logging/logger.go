// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog or zap.
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "session authenticated", "user", name, "role", role)
type Logger interface {
	// Debug logs diagnostic details that are off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Supported backends for New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a Logger for the given backend and level name
// ("debug", "info", "warn", "error") writing to w.
func New(backend, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		lvl, err := parseSlogLevel(level)
		if err != nil {
			return nil, err
		}
		return newSlogText(w, lvl), nil
	case BackendZap:
		return newZap(w, level)
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
