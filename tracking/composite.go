package tracking

import (
	"sync"
	"time"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// CompositeSink fans every entity out to its children. Errors from
// individual children are collected with errors.Join; one failing child
// never stops the others from receiving the entity.
type CompositeSink struct {
	mu     sync.RWMutex
	sinks  []Sink
	closed bool
}

// NewCompositeSink combines the given sinks. Nil children are dropped;
// at least one real sink is required.
func NewCompositeSink(sinks ...Sink) (*CompositeSink, error) {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, errors.NewValueError("tracking.NewCompositeSink", "at least one sink is required")
	}
	return &CompositeSink{sinks: valid}, nil
}

func (c *CompositeSink) children() ([]Sink, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrSinkClosed
	}
	return c.sinks, nil
}

// StartRun forwards the run to every child.
func (c *CompositeSink) StartRun(info RunInfo) error {
	sinks, err := c.children()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range sinks {
		if err := s.StartRun(info); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EndRun forwards the end of the run to every child.
func (c *CompositeSink) EndRun(runID string, end time.Time) error {
	sinks, err := c.children()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range sinks {
		if err := s.EndRun(runID, end); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogParams forwards the batch to every child.
func (c *CompositeSink) LogParams(runID string, params []Param) error {
	sinks, err := c.children()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range sinks {
		if err := s.LogParams(runID, params); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogMetric forwards the observation to every child.
func (c *CompositeSink) LogMetric(runID string, m Metric) error {
	sinks, err := c.children()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range sinks {
		if err := s.LogMetric(runID, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes every child.
func (c *CompositeSink) Flush() error {
	sinks, err := c.children()
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every child. Idempotent; later entity calls return
// ErrSinkClosed.
func (c *CompositeSink) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sinks := c.sinks
	c.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*CompositeSink)(nil)
