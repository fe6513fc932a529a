// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging wraps log/slog with the component-tagging idiom used
// throughout the mediator: every subsystem calls WithComponent(name)
// once at construction and logs through the returned Logger.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// Format selects the slog handler used by New.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures the root logger.
type Config struct {
	Level  slog.Level
	Format Format
	Output *os.File
}

// DefaultConfig returns the mediator's default logging configuration:
// info level, text format, stderr.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// Logger is a thin, component-tagged wrapper around *slog.Logger.
type Logger struct {
	base      *slog.Logger
	component string
}

// New builds a root Logger from Config.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &Logger{base: slog.New(handler)}
}

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// Default returns a process-wide logger built from DefaultConfig,
// constructed lazily and reused. Components should prefer an injected
// Logger; Default exists for the few call sites (package-level helpers)
// that have no constructor to inject one into.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLog = New(DefaultConfig())
	})
	return defaultLog
}

// WithComponent returns a Logger that tags every record with
// component=name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		base:      l.base.With("component", name),
		component: name,
	}
}

// With returns a Logger with the given key-value pairs attached to
// every subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...), component: l.component}
}

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

// DebugContext/InfoContext/WarnContext/ErrorContext propagate a context
// so handlers that care about request-scoped values (e.g. a trace ID)
// can pick it up.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, args...)
}

// Slog returns the underlying *slog.Logger for callers that need to
// pass one into a library expecting slog directly.
func (l *Logger) Slog() *slog.Logger { return l.base }
