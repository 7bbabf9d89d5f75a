// Package logging provides structured logging for RouteFlow runs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Log levels accepted by the logger and reported in log entries.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// logFileName is the file created inside the configured log directory.
const logFileName = "routeflow.log"

// Logger emits JSON log lines with persistent context attributes.
// Child loggers created via the With* methods share the parent's sink,
// so closing any of them closes the underlying file exactly once.
// Safe for concurrent use.
type Logger struct {
	sl   *slog.Logger
	sink *sharedSink
}

// sharedSink closes the log file once no matter how many child loggers
// reference it.
type sharedSink struct {
	once   sync.Once
	closer io.Closer
	err    error
}

func (s *sharedSink) close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	s.once.Do(func() {
		s.err = s.closer.Close()
	})
	return s.err
}

// syncCloser wraps a plain log file so Close also flushes it.
type syncCloser struct {
	f *os.File
}

func (c syncCloser) Close() error {
	if err := c.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return c.f.Close()
}

// NewLogger creates a Logger writing JSON lines to {logDir}/routeflow.log.
// When logDir is empty the logger writes to stderr instead. Levels at or
// above level are emitted; unrecognized level strings default to INFO.
func NewLogger(logDir, level string) (*Logger, error) {
	if logDir == "" {
		return newLogger(os.Stderr, level, nil), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(f, level, syncCloser{f}), nil
}

// NewLoggerWithRotation creates a Logger whose log file rotates once it
// exceeds the configured size. With an empty logDir this is equivalent to
// NewLogger writing to stderr.
func NewLoggerWithRotation(logDir, level string, config RotationConfig) (*Logger, error) {
	if logDir == "" {
		return NewLogger("", level)
	}

	rw, err := NewRotatingWriter(filepath.Join(logDir, logFileName), config)
	if err != nil {
		return nil, err
	}
	return newLogger(rw, level, rw), nil
}

// NopLogger returns a Logger that discards everything.
func NopLogger() *Logger {
	return newLogger(io.Discard, LevelError, nil)
}

func newLogger(w io.Writer, level string, closer io.Closer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	return &Logger{
		sl:   slog.New(handler),
		sink: &sharedSink{closer: closer},
	}
}

func slogLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRun returns a child logger tagging every entry with the run ID.
func (l *Logger) WithRun(runID string) *Logger {
	return l.With("run_id", runID)
}

// WithStage returns a child logger tagging every entry with a pipeline
// stage name such as "routing" or "invoke".
func (l *Logger) WithStage(stage string) *Logger {
	return l.With("stage", stage)
}

// WithSpecialist returns a child logger tagging every entry with the
// specialist identifier.
func (l *Logger) WithSpecialist(id string) *Logger {
	return l.With("specialist", id)
}

// With returns a child logger carrying additional key-value attributes.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{sl: l.sl.With(args...), sink: l.sink}
}

// Debug logs at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }

// Info logs at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.sl.Info(msg, args...) }

// Warn logs at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.sl.Warn(msg, args...) }

// Error logs at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

// Close flushes and closes the log file. Closing a stderr or nop logger
// is a no-op, and repeated calls return the first result.
func (l *Logger) Close() error {
	return l.sink.close()
}

// ParseLevel normalizes a level string to one of the Level* constants,
// defaulting to LevelInfo for anything unrecognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return strings.ToUpper(level)
	default:
		return LevelInfo
	}
}

// ValidLevels returns the accepted log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
