// Package log provides the structured logging interface used across fitlog.
//
// The package defines a small, slog-compatible Logger interface so that the
// tracking client, the sinks and the autologging session can emit structured
// records without being tied to one backend. The default implementation rides
// on log/slog; the same interface is satisfied by the in-memory TestLogger
// used throughout the test suites.
//
// Key features:
//   - slog-compatible interface, implementation swappable per provider
//   - Standard attribute keys for runs, metrics, params and sinks
//   - Contextual loggers via With field chaining
//   - Enabled checks to skip expensive record construction
//   - Test-friendly capture with TestLogger
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "LinearRegression",
//	    log.RunIDKey, run.ID(),
//	)
//	logger.Info("fit complete",
//	    log.OperationKey, log.OperationFit,
//	    log.ParamCountKey, 12,
//	)
package log

import (
	"context"
)

// Logger is the structured logging interface shared by every fitlog
// component.
//
// Fields are alternating key-value pairs in the slog style. The keys in
// attributes.go should be preferred over ad-hoc strings so that records
// from the tracking client, the sinks and the session stay queryable as
// one corpus.
//
// With derives a contextual logger carrying pre-populated fields; the
// sinks use it to stamp every record with their sink.name.
type Logger interface {
	// Debug logs detailed diagnostic information, typically disabled
	// outside development. The tracking sinks log individual params at
	// this level.
	//
	// Example:
	//
	//	logger.Debug("param",
	//	    "key", p.Key,
	//	    "value", p.Value,
	//	)
	Debug(msg string, fields ...any)

	// Info logs general operational information: run lifecycle events,
	// metric records, fit completions.
	//
	// Example:
	//
	//	logger.Info("metric logged",
	//	    log.MetricNameKey, m.Key,
	//	    log.MetricValueKey, m.Value,
	//	)
	Info(msg string, fields ...any)

	// Warn logs conditions the caller survived: a metric that could not
	// be computed, a truncated parameter value, an unsupported library
	// version.
	//
	// Example:
	//
	//	logger.Warn("metric skipped",
	//	    log.MetricNameKey, "f1_score",
	//	    "reason", err.Error(),
	//	)
	Warn(msg string, fields ...any)

	// Error logs failures that should be investigated. When a field
	// value is an error produced by pkg/errors, the slog handler chain
	// surfaces its stack trace and concrete type alongside the record.
	//
	// Example:
	//
	//	logger.Error("fit failed",
	//	    log.ErrAttrKey, err,
	//	    log.OperationKey, log.OperationFit,
	//	)
	Error(msg string, fields ...any)

	// With returns a Logger that includes the given fields in every
	// subsequent record. Used to scope loggers to a model, a run or a
	// sink once instead of repeating the fields at each call site.
	//
	// Example:
	//
	//	runLogger := logger.With(log.RunIDKey, run.ID())
	//	runLogger.Info("params logged", log.ParamCountKey, len(params))
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given
	// level, so callers can skip building expensive field values:
	//
	//	if logger.Enabled(ctx, LevelDebug) {
	//	    logger.Debug("gradient state", "weights", fmt.Sprint(w))
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level with slog-compatible values.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. The package-level
// GetLogger functions delegate to the installed provider, which tests
// replace with a TestLoggerProvider to capture output.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger scoped to a named component,
	// e.g. "autolog" or "tracking".
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
