// Package logging provides structured logging utilities for oikos components.
//
// # Overview
//
// This package wraps the standard library slog package with oikos-specific
// defaults and conventions for consistent logging across all components. It
// supports environment-based log level configuration, module/version context
// injection, and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("oikos", "v1.0.0")
//
//	    // Use slog as normal
//	    slog.Info("ensuring registry", "name", "oikos-registry")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("step failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("orchestrator", "v1.0.0", "debug")
//	logger.Info("run starting", "run_id", runID)
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("cli", "v1.0.0", "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug oikos up
//	LOG_LEVEL=error oikos cleanup
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "cluster ready",
//	    "module": "oikos",
//	    "version": "v1.0.0",
//	    "cluster": "oikos"
//	}
//
// Debug logs include source location. Progress output goes to stderr so that
// stdout stays reserved for the final operator-facing summary line.
package logging
