package tracking

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitlog-ml/fitlog/pkg/errors"
	"github.com/fitlog-ml/fitlog/pkg/log"
)

// Clock returns the current time. Tests replace it to get
// deterministic timestamps.
type Clock func() time.Time

// Client creates runs against one sink.
type Client struct {
	sink   Sink
	logger log.Logger
	now    Clock
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger run lifecycle events go to.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces the time source.
func WithClock(now Clock) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a client writing to sink. A nil sink degrades to a
// NoOpSink so callers can keep one code path whether or not tracking is
// configured.
func NewClient(sink Sink, opts ...Option) *Client {
	c := &Client{
		sink:   sink,
		logger: log.GetLoggerWithName("tracking"),
		now:    time.Now,
	}
	if c.sink == nil {
		c.sink = NewNoOpSink()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sink returns the sink this client writes to.
func (c *Client) Sink() Sink {
	return c.sink
}

// NewRun starts a run under a fresh UUID.
func (c *Client) NewRun(name string) (*Run, error) {
	info := RunInfo{
		ID:        uuid.New().String(),
		Name:      name,
		StartTime: c.now(),
	}
	if err := c.sink.StartRun(info); err != nil {
		return nil, errors.Wrap(err, "tracking: start run")
	}
	c.logger.Info("run started",
		log.RunIDKey, info.ID,
		log.RunNameKey, info.Name,
	)
	return &Run{
		client: c,
		info:   info,
		steps:  make(map[string]int),
	}, nil
}

// Run is one training execution. Entities logged on it are forwarded to
// the client's sink; params are truncated to the entity limits and
// chunked, metrics get a per-key monotonic step. A Run is safe for
// concurrent use.
type Run struct {
	client *Client
	info   RunInfo

	mu    sync.Mutex
	steps map[string]int
	ended bool
}

// ID returns the run's unique identifier.
func (r *Run) ID() string {
	return r.info.ID
}

// Info returns the run's metadata.
func (r *Run) Info() RunInfo {
	return r.info
}

func (r *Run) endedErr(op string) error {
	return errors.NewValueError(op, fmt.Sprintf("run %s has already ended", r.info.ID))
}

// LogParam records a single parameter.
func (r *Run) LogParam(key, value string) error {
	return r.LogParams([]Param{{Key: key, Value: value}})
}

// LogParams records parameters. Over-long keys and values are cut to
// MaxEntityKeyLength / MaxParamValueLength with one warning per
// truncated side; the batch is split into sink calls of at most
// MaxParamsPerBatch entries.
func (r *Run) LogParams(params []Param) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return r.endedErr("tracking.Run.LogParams")
	}
	if len(params) == 0 {
		return nil
	}

	clipped := make([]Param, len(params))
	for i, p := range params {
		clipped[i] = truncateParam(p)
	}

	for start := 0; start < len(clipped); start += MaxParamsPerBatch {
		end := start + MaxParamsPerBatch
		if end > len(clipped) {
			end = len(clipped)
		}
		if err := r.client.sink.LogParams(r.info.ID, clipped[start:end]); err != nil {
			return errors.Wrap(err, "tracking: log params")
		}
	}
	return nil
}

// LogMetric records one observation of key. The step starts at 0 and
// increments on every further observation of the same key.
func (r *Run) LogMetric(key string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return r.endedErr("tracking.Run.LogMetric")
	}

	step := r.steps[key]
	m := Metric{
		Key:       key,
		Value:     value,
		Step:      step,
		Timestamp: r.client.now(),
	}
	if err := r.client.sink.LogMetric(r.info.ID, m); err != nil {
		return errors.Wrap(err, "tracking: log metric")
	}
	r.steps[key] = step + 1
	return nil
}

// End closes the run. Further logging calls and a second End fail with
// a ValueError.
func (r *Run) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ended {
		return r.endedErr("tracking.Run.End")
	}
	r.ended = true

	if err := r.client.sink.EndRun(r.info.ID, r.client.now()); err != nil {
		return errors.Wrap(err, "tracking: end run")
	}
	r.client.logger.Info("run ended",
		log.RunIDKey, r.info.ID,
		log.RunNameKey, r.info.Name,
	)
	return nil
}

// truncateParam enforces the entity limits on one param, warning the
// same way maputil.Truncate does.
func truncateParam(p Param) Param {
	key := p.Key
	if len(p.Key) > MaxEntityKeyLength {
		errors.Warn(errors.Newf("Truncated the key `%s`", key))
		p.Key = p.Key[:MaxEntityKeyLength]
	}
	if len(p.Value) > MaxParamValueLength {
		errors.Warn(errors.Newf("Truncated the value `%s` (in the key `%s`)", p.Value, key))
		p.Value = p.Value[:MaxParamValueLength]
	}
	return p
}
