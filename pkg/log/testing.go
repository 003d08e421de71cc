// Package log provides testing utilities for structured logging.
//
// This file contains the in-memory logger the fitlog test suites run
// against. Tests hand a TestLogger to the component under test (a sink,
// the tracking client, an autologging session), let it log, and then
// assert on the captured records by message or by structured field.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger captures log records in memory as JSON lines for later
// inspection. Safe for concurrent use; loggers derived via With share
// one buffer and one mutex, so a component may fan the logger out to
// goroutines (or scoped sink loggers) and the test still sees every
// record.
type TestLogger struct {
	mu     *sync.Mutex
	buffer *bytes.Buffer
	level  Level
	bound  []any // key/value pairs bound via With, applied to every record
}

// NewTestLogger creates a TestLogger with the given minimum level and
// returns it together with the buffer holding the captured output.
//
// Example:
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	sink := tracking.NewLogSink(logger)
//	// drive the sink, then assert:
//	//   logger.ContainsMessage("run started")
//	//   logger.ContainsField(log.RunIDKey, "run-1")
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{
		mu:     &sync.Mutex{},
		buffer: buffer,
		level:  level,
	}, buffer
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) {
	t.capture(LevelDebug, msg, fields)
}

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) {
	t.capture(LevelInfo, msg, fields)
}

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) {
	t.capture(LevelWarn, msg, fields)
}

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) {
	t.capture(LevelError, msg, fields)
}

// With implements Logger.With. The derived logger writes into the same
// buffer as its parent.
func (t *TestLogger) With(fields ...any) Logger {
	// A trailing key without a value is dropped here so later pairs
	// cannot pair up across With calls.
	if len(fields)%2 != 0 {
		fields = fields[:len(fields)-1]
	}

	bound := make([]any, 0, len(t.bound)+len(fields))
	bound = append(bound, t.bound...)
	bound = append(bound, fields...)

	return &TestLogger{
		mu:     t.mu,
		buffer: t.buffer,
		level:  t.level,
		bound:  bound,
	}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(ctx context.Context, level Level) bool {
	return t.level <= level
}

// capture renders one record as a JSON line and appends it to the
// shared buffer.
func (t *TestLogger) capture(lvl Level, msg string, fields []any) {
	if t.level > lvl {
		return
	}

	entry := map[string]interface{}{
		"level":   lvl.String(),
		"message": msg,
	}
	addPairs(entry, t.bound)
	addPairs(entry, fields)

	line, _ := json.Marshal(entry)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffer.Write(line)
	t.buffer.WriteByte('\n')
}

// addPairs folds key/value pairs into entry. Later pairs win on key
// collision, and error values are stored as their message text.
func addPairs(entry map[string]interface{}, pairs []any) {
	for i := 0; i+1 < len(pairs); i += 2 {
		key := fmt.Sprintf("%v", pairs[i])
		if err, ok := pairs[i+1].(error); ok {
			entry[key] = err.Error()
			continue
		}
		entry[key] = pairs[i+1]
	}
}

// GetBuffer returns the internal buffer for direct access to captured logs.
func (t *TestLogger) GetBuffer() *bytes.Buffer {
	return t.buffer
}

// GetLogEntries parses the captured output into one map per record.
// Note that JSON unmarshaling turns all numeric field values into
// float64.
//
// Example:
//
//	entries, err := testLogger.GetLogEntries()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	if entries[0][log.MetricNameKey] != "training_score" {
//	    t.Error("wrong metric recorded first")
//	}
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	t.mu.Lock()
	captured := t.buffer.String()
	t.mu.Unlock()

	var entries []map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(captured))
	for dec.More() {
		var entry map[string]interface{}
		if err := dec.Decode(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any captured record contains the
// given text.
//
// Example:
//
//	if !testLogger.ContainsMessage("metric logged") {
//	    t.Error("Expected the sink to log the metric")
//	}
func (t *TestLogger) ContainsMessage(message string) bool {
	t.mu.Lock()
	captured := t.buffer.String()
	t.mu.Unlock()
	return strings.Contains(captured, message)
}

// ContainsField reports whether any captured record carries the field
// with exactly the given value. Values are compared after the JSON
// round trip, so numeric expectations must be float64.
//
// Example:
//
//	if !testLogger.ContainsField(log.OperationKey, log.OperationFit) {
//	    t.Error("Expected fit operation in logs")
//	}
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if got, ok := entry[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Clear discards everything captured so far. Useful for resetting
// state between test cases.
func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buffer.Reset()
}

// TestLoggerProvider implements LoggerProvider on top of one shared
// TestLogger, for tests that swap the package-level provider via
// SetLoggerProvider.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider creates a test provider and returns it with the
// buffer holding everything its loggers emit.
func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buffer := NewTestLogger(level)
	return &TestLoggerProvider{logger: logger}, buffer
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *TestLoggerProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With("component", name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.level = level
}

// GetBuffer returns the buffer for accessing captured logs.
func (p *TestLoggerProvider) GetBuffer() *bytes.Buffer {
	return p.logger.GetBuffer()
}
