package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger configures the process-wide loggers: the slog default and
// the provider behind GetLogger both emit JSON at the given level.
// Intended for binaries; libraries should take a Logger instead.
func SetupLogger(loglevel string) {
	level := ToLogLevel(loglevel)
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
	SetLevel(Level(level))
}

// ToLogLevel parses a level name. Unknown names panic; this runs at
// startup where a typo should be loud.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
