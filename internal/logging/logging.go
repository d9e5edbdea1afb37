// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RunIDKey is the context key for check and maintenance run ids.
	RunIDKey ContextKey = "run_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Initialize with a default logger (text format, Info level) on stderr,
	// keeping stdout free for command output
	InitLoggerTo(os.Stderr, LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel converts a configuration value such as "debug" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat converts a configuration value ("json" or "text") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "", "text":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// InitLogger initializes the global logger to write to stderr.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo initializes the global logger with the specified writer,
// level and format.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// OrDefault returns l, or the global logger when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return defaultLogger
	}
	return l
}

// WithRunID adds a run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run id from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

// Helper functions for common logging patterns

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// BookLoaded logs a completed book load.
func BookLoaded(l *slog.Logger, collection, book string, images, problems int, args ...any) {
	allArgs := []any{
		"collection", collection,
		"book", book,
		"images", images,
		"errors", problems,
	}
	allArgs = append(allArgs, args...)
	OrDefault(l).Debug("book_loaded", allArgs...)
}

// CollectionLoaded logs a completed collection load.
func CollectionLoaded(l *slog.Logger, collection string, books, problems int, args ...any) {
	allArgs := []any{
		"collection", collection,
		"books", books,
		"errors", problems,
	}
	allArgs = append(allArgs, args...)
	OrDefault(l).Debug("collection_loaded", allArgs...)
}

// ChecksumRefresh logs the outcome of a digest index refresh.
func ChecksumRefresh(l *slog.Logger, scope string, recomputed, retained, dropped, failed int, args ...any) {
	allArgs := []any{
		"scope", scope,
		"recomputed", recomputed,
		"retained", retained,
		"dropped", dropped,
		"failed", failed,
	}
	allArgs = append(allArgs, args...)
	OrDefault(l).Info("checksum_refresh", allArgs...)
}

// CropImage logs one crop job.
func CropImage(l *slog.Logger, image string, duration time.Duration, args ...any) {
	allArgs := []any{
		"image", image,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	OrDefault(l).Debug("crop_image", allArgs...)
}

// CropFailed logs a crop job the external tool could not complete.
func CropFailed(l *slog.Logger, image string, err error, args ...any) {
	allArgs := []any{
		"image", image,
		"error", err.Error(),
	}
	allArgs = append(allArgs, args...)
	OrDefault(l).Error("crop_failed", allArgs...)
}

// CheckCompleted logs the summary of a consistency check run.
func CheckCompleted(ctx context.Context, subject string, errorCount, warningCount int, args ...any) {
	allArgs := []any{
		"subject", subject,
		"errors", errorCount,
		"warnings", warningCount,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("check_completed", allArgs...)
}
