package tracking

import (
	"fmt"
	"sync"
	"time"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// MemorySink keeps every entity in process memory. It backs the test
// suites and the plotting example; accessors return copies so callers
// can inspect state without racing the sink.
type MemorySink struct {
	mu      sync.RWMutex
	order   []string
	runs    map[string]RunInfo
	ends    map[string]time.Time
	params  map[string][]Param
	metrics map[string][]Metric
	closed  bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		runs:    make(map[string]RunInfo),
		ends:    make(map[string]time.Time),
		params:  make(map[string][]Param),
		metrics: make(map[string][]Metric),
	}
}

// StartRun registers the run. A duplicate run ID is a ValueError.
func (s *MemorySink) StartRun(info RunInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if _, exists := s.runs[info.ID]; exists {
		return errors.NewValueError("tracking.MemorySink.StartRun", fmt.Sprintf("run %q already started", info.ID))
	}
	s.runs[info.ID] = info
	s.order = append(s.order, info.ID)
	return nil
}

// EndRun records the end time of a known run.
func (s *MemorySink) EndRun(runID string, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if _, exists := s.runs[runID]; !exists {
		return errors.NewValueError("tracking.MemorySink.EndRun", fmt.Sprintf("unknown run %q", runID))
	}
	s.ends[runID] = end
	return nil
}

// LogParams appends the batch to the run's parameter list.
func (s *MemorySink) LogParams(runID string, params []Param) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if _, exists := s.runs[runID]; !exists {
		return errors.NewValueError("tracking.MemorySink.LogParams", fmt.Sprintf("unknown run %q", runID))
	}
	s.params[runID] = append(s.params[runID], params...)
	return nil
}

// LogMetric appends one observation to the run's metric list.
func (s *MemorySink) LogMetric(runID string, m Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if _, exists := s.runs[runID]; !exists {
		return errors.NewValueError("tracking.MemorySink.LogMetric", fmt.Sprintf("unknown run %q", runID))
	}
	s.metrics[runID] = append(s.metrics[runID], m)
	return nil
}

// Flush is a no-op; nothing is buffered.
func (s *MemorySink) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	return nil
}

// Close marks the sink closed. Idempotent.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Runs returns the started runs in start order.
func (s *MemorySink) Runs() []RunInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id])
	}
	return out
}

// ParamsFor returns the parameters logged for a run, in log order.
func (s *MemorySink) ParamsFor(runID string) []Param {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Param(nil), s.params[runID]...)
}

// MetricsFor returns every metric logged for a run, in log order.
func (s *MemorySink) MetricsFor(runID string) []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Metric(nil), s.metrics[runID]...)
}

// MetricHistory returns the observations of one metric key, in log
// order. Steps are monotonically increasing for entities produced by a
// Run.
func (s *MemorySink) MetricHistory(runID, key string) []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []Metric
	for _, m := range s.metrics[runID] {
		if m.Key == key {
			history = append(history, m)
		}
	}
	return history
}

// EndTime reports when the run was ended, if it was.
func (s *MemorySink) EndTime(runID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	end, ok := s.ends[runID]
	return end, ok
}

var _ Sink = (*MemorySink)(nil)
