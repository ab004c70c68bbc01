// Package logging provides config-driven categorized logging for launchdeck.
// Every category is a named child of one zap logger. In interactive mode the
// terminal belongs to the table, so logs are written to a file and only when
// debug_mode is enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config, teardown
	CategoryQuery     Category = "query"     // GraphQL fetches and the response cache
	CategoryStore     Category = "store"     // Key-value backends and favorites persistence
	CategoryReconcile Category = "reconcile" // Row reconciliation
	CategoryUI        Category = "ui"        // Interactive table events
)

// Options mirrors config.LoggingConfig plus the command-line verbosity flag
// so this package does not import config.
type Options struct {
	Level      string
	Verbose    bool
	DebugMode  bool
	JSONFormat bool
	// File redirects output away from stderr. Required for interactive mode.
	File       string
	Categories map[string]bool
}

// Logger hands out per-category zap loggers.
type Logger struct {
	base       *zap.Logger
	categories map[string]bool
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// New builds a zap logger from opts.
func New(opts Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if !opts.JSONFormat {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if opts.File != "" {
		if !opts.DebugMode {
			// File logging is the interactive path; production mode stays silent.
			return &Logger{base: zap.NewNop(), categories: opts.Categories}, nil
		}
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{base: z, categories: opts.Categories}, nil
}

// ParseLevel maps a config level string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Categories not listed are enabled.
func (l *Logger) IsCategoryEnabled(category Category) bool {
	if l == nil {
		return false
	}
	if l.categories == nil {
		return true
	}
	enabled, exists := l.categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns the logger for a category, or a no-op logger when the
// category is disabled.
func (l *Logger) Get(category Category) *zap.Logger {
	if l == nil || l.base == nil || !l.IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	return l.base.Named(string(category))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil || l.base == nil {
		return nil
	}
	return l.base.Sync()
}

// Timer tracks operation duration.
type Timer struct {
	logger *zap.Logger
	op     string
	start  time.Time
}

// StartTimer starts a timer that logs at debug level when stopped.
func StartTimer(logger *zap.Logger, op string) *Timer {
	return &Timer{logger: logger, op: op, start: time.Now()}
}

// Stop logs the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.logger != nil {
		t.logger.Debug("operation finished", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
