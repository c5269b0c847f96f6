// Package logging defines a minimal structured-logging interface used across
// the project. Implementations can wrap slog, zap, zerolog, etc.
//
// Callers must never pass token values or passwords as attributes.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "boot finished", "route", route.Name, "authenticated", ok)
type Logger interface {
	// Debug logs a verbose diagnostic message.
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

// Nop discards everything. Useful as a default and in tests.
type Nop struct{}

func (Nop) Debug(ctx context.Context, msg string, args ...any) {}
func (Nop) Info(ctx context.Context, msg string, args ...any)  {}
func (Nop) Warn(ctx context.Context, msg string, args ...any)  {}
func (Nop) Error(ctx context.Context, msg string, args ...any) {}
func (n Nop) With(args ...any) Logger                          { return n }
