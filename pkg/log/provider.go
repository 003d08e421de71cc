// Package log provides the default logger provider for fitlog.
//
// This file wires the Logger interface to Go's log/slog. The package-level
// GetLogger and GetLoggerWithName functions are the entry points used across
// the library; SetLoggerProvider swaps the backing implementation (for tests
// or embedding applications).

package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// Debug implements Logger.Debug.
func (s *slogLogger) Debug(msg string, fields ...any) {
	s.logger.Debug(msg, fields...)
}

// Info implements Logger.Info.
func (s *slogLogger) Info(msg string, fields ...any) {
	s.logger.Info(msg, fields...)
}

// Warn implements Logger.Warn.
func (s *slogLogger) Warn(msg string, fields ...any) {
	s.logger.Warn(msg, fields...)
}

// Error implements Logger.Error.
func (s *slogLogger) Error(msg string, fields ...any) {
	s.logger.Error(msg, fields...)
}

// With implements Logger.With.
func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: s.logger.With(fields...)}
}

// Enabled implements Logger.Enabled.
func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger.Enabled(ctx, slog.Level(level))
}

// SlogProvider is the default LoggerProvider backed by log/slog.
// Loggers share a single handler; the level can be adjusted at runtime.
type SlogProvider struct {
	mu     sync.RWMutex
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewSlogProvider creates a provider that emits JSON records to stderr with
// cockroachdb stacktrace extraction (see ErrFmtHandler).
func NewSlogProvider(level Level) *SlogProvider {
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.Level(level))
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})
	return &SlogProvider{
		level:  levelVar,
		logger: slog.New(WrapByErrFmtHandler(handler)),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &slogLogger{logger: p.logger}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &slogLogger{logger: p.logger.With(ComponentKey, name)}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewSlogProvider(LevelInfo)
)

// SetLoggerProvider replaces the package-level provider.
// Passing nil restores the default slog provider.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p == nil {
		p = NewSlogProvider(LevelInfo)
	}
	defaultProvider = p
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
//
// Example:
//
//	logger := log.GetLoggerWithName("autolog")
//	logger.Info("session started", log.RunIDKey, run.ID())
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel adjusts the minimum level of the default provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}
