// Package logging provides structured logging for RouteFlow runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for debugging and post-hoc analysis. It is
// designed to help troubleshoot pipeline runs by providing structured,
// filterable logs that can be analyzed after the fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (run ID, stage, specialist)
//   - Log rotation with configurable size limits
//   - Optional gzip compression for rotated logs
//   - Log aggregation and filtering utilities
//   - Export to JSON, text, or CSV formats
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access. The
// [RotatingWriter] type uses a mutex to protect file operations during
// rotation. Child loggers created via With* methods share the underlying
// writer safely.
//
// # Basic Usage
//
// Create a logger for a log directory:
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("run completed", "duration_ms", 150)
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	runLogger := logger.WithRun("run-abc123")
//	stageLogger := runLogger.WithStage("invoke")
//	specLogger := stageLogger.WithSpecialist("budget_risk")
//
//	// All logs from specLogger include run_id, stage, and specialist
//	specLogger.Info("invocation complete", "confidence", 0.92)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"invocation complete","run_id":"run-abc123","stage":"invoke","specialist":"budget_risk","confidence":0.92}
//
// # Log Rotation
//
// For long-running processes, use log rotation to prevent unbounded growth:
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	}
//
//	logger, err := logging.NewLoggerWithRotation("/path/to/logs", "INFO", config)
//
// Rotated files are named: routeflow.log.1, routeflow.log.2, etc., where .1
// is the most recent backup. When compression is enabled, rotated files
// become routeflow.log.1.gz, etc.
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output.
//
// # Log Aggregation and Filtering
//
// Read and analyze logs after the fact:
//
//	entries, err := logging.AggregateLogs("/path/to/logs")
//	if err != nil {
//	    return err
//	}
//
//	filter := logging.LogFilter{
//	    Level: "WARN",
//	    Stage: "invoke",
//	    RunID: "run-abc123",
//	}
//	filtered := logging.FilterLogs(entries, filter)
//
//	logging.ExportLogEntries(filtered, "errors.json", "json")
//
// # Log Levels
//
// The package defines four log levels:
//
//   - [LevelDebug]: Detailed information for debugging
//   - [LevelInfo]: General operational information (default)
//   - [LevelWarn]: Warning conditions that may need attention
//   - [LevelError]: Error conditions that affect functionality
//
// Use [ValidLevels] to get the list of valid level strings, and [ParseLevel]
// to normalize user-provided level strings.
package logging
