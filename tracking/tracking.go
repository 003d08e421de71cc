// Package tracking records training runs: their parameters, metric
// observations and lifecycle. A Run is created by a Client and forwards
// every entity to a Sink; sinks range from an in-memory store used by
// tests to InfluxDB, Prometheus and SQLite backends. Several sinks can
// be combined with CompositeSink.
package tracking

import (
	"time"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Param は実行に記録されるハイパーパラメータの1項目
type Param struct {
	Key   string
	Value string
}

// Metric は実行に記録される数値指標の1観測点
type Metric struct {
	Key       string
	Value     float64
	Step      int
	Timestamp time.Time
}

// RunInfo は1回の学習実行のメタデータ
type RunInfo struct {
	ID        string
	Name      string
	StartTime time.Time
}

// Entity limits enforced before entities reach a sink.
const (
	// MaxEntityKeyLength is the longest key a param may carry.
	MaxEntityKeyLength = 250
	// MaxParamValueLength is the longest value a param may carry.
	MaxParamValueLength = 250
	// MaxParamsPerBatch is the largest batch passed to Sink.LogParams in one call.
	MaxParamsPerBatch = 100
)

// ErrSinkClosed is returned by a sink whose Close has been called.
var ErrSinkClosed = errors.New("tracking: sink is closed")

// Sink receives tracking entities. Implementations must be safe for
// concurrent use: a Run serializes its own calls, but independent runs
// may share one sink.
type Sink interface {
	// StartRun makes a run known to the backend.
	StartRun(info RunInfo) error

	// EndRun marks the run as finished at the given time.
	EndRun(runID string, end time.Time) error

	// LogParams records a batch of at most MaxParamsPerBatch parameters.
	LogParams(runID string, params []Param) error

	// LogMetric records a single metric observation.
	LogMetric(runID string, m Metric) error

	// Flush pushes buffered entities out to the backend.
	Flush() error

	// Close flushes and releases resources. Afterwards every method
	// returns ErrSinkClosed.
	Close() error
}

// NoOpSink accepts and discards every entity. It is the sink a Client
// falls back to when constructed with nil.
type NoOpSink struct{}

// NewNoOpSink creates a sink that discards everything.
func NewNoOpSink() *NoOpSink {
	return &NoOpSink{}
}

func (n *NoOpSink) StartRun(RunInfo) error          { return nil }
func (n *NoOpSink) EndRun(string, time.Time) error  { return nil }
func (n *NoOpSink) LogParams(string, []Param) error { return nil }
func (n *NoOpSink) LogMetric(string, Metric) error  { return nil }
func (n *NoOpSink) Flush() error                    { return nil }
func (n *NoOpSink) Close() error                    { return nil }

var _ Sink = (*NoOpSink)(nil)
