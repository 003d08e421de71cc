package tracking

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// PrometheusConfig configures a PrometheusSink.
type PrometheusConfig struct {
	// Namespace is the metric namespace, e.g. "fitlog".
	Namespace string

	// Subsystem is the metric subsystem, e.g. "training".
	Subsystem string

	// Registerer receives the sink's collectors. Nil means
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// DefaultPrometheusConfig returns the configuration used when nothing
// is customized.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{Namespace: "fitlog", Subsystem: "training"}
}

// Validate checks that the required fields are set.
func (c PrometheusConfig) Validate() error {
	if c.Namespace == "" {
		return errors.NewValueError("tracking.PrometheusConfig", "namespace is required")
	}
	if c.Subsystem == "" {
		return errors.NewValueError("tracking.PrometheusConfig", "subsystem is required")
	}
	return nil
}

// PrometheusSink exposes the latest value of every logged metric as a
// gauge labelled by run and key, plus a counter of logged entities.
// Steps and timestamps are not representable in the pull model; the
// gauge always carries the most recent observation.
type PrometheusSink struct {
	metricValue *prometheus.GaugeVec
	entities    *prometheus.CounterVec

	registerer prometheus.Registerer
	collectors []prometheus.Collector

	mu     sync.RWMutex
	closed bool
}

// NewPrometheusSink registers the sink's collectors on the configured
// registerer. Duplicate registration errors surface here.
func NewPrometheusSink(cfg PrometheusConfig) (*PrometheusSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	s := &PrometheusSink{
		metricValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "metric_value",
				Help:      "Latest value of each training metric, labelled by run and key.",
			},
			[]string{"run_id", "key"},
		),
		entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "logged_entities_total",
				Help:      "Entities logged through the sink, by entity type.",
			},
			[]string{"entity"},
		),
		registerer: registerer,
	}

	s.collectors = []prometheus.Collector{s.metricValue, s.entities}
	for i, c := range s.collectors {
		if err := registerer.Register(c); err != nil {
			for _, prev := range s.collectors[:i] {
				registerer.Unregister(prev)
			}
			return nil, errors.Wrap(err, "tracking: register prometheus collector")
		}
	}
	return s, nil
}

func (s *PrometheusSink) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *PrometheusSink) StartRun(info RunInfo) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	s.entities.WithLabelValues("run").Inc()
	return nil
}

func (s *PrometheusSink) EndRun(runID string, end time.Time) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	return nil
}

func (s *PrometheusSink) LogParams(runID string, params []Param) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	s.entities.WithLabelValues("param").Add(float64(len(params)))
	return nil
}

func (s *PrometheusSink) LogMetric(runID string, m Metric) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	s.metricValue.WithLabelValues(runID, m.Key).Set(m.Value)
	s.entities.WithLabelValues("metric").Inc()
	return nil
}

func (s *PrometheusSink) Flush() error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	return nil
}

// Close unregisters the sink's collectors. Idempotent.
func (s *PrometheusSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, c := range s.collectors {
		s.registerer.Unregister(c)
	}
	return nil
}

var _ Sink = (*PrometheusSink)(nil)
