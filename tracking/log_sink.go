package tracking

import (
	"time"

	"github.com/fitlog-ml/fitlog/pkg/log"
)

// LogSink writes every entity as a structured log line. It is a
// lightweight default backend and a useful CompositeSink companion when
// a durable sink should stay observable.
type LogSink struct {
	logger log.Logger
}

// NewLogSink creates a sink logging through the given logger. A nil
// logger falls back to the package provider.
func NewLogSink(logger log.Logger) *LogSink {
	if logger == nil {
		logger = log.GetLoggerWithName("tracking")
	}
	return &LogSink{logger: logger.With(log.SinkNameKey, "log")}
}

func (s *LogSink) StartRun(info RunInfo) error {
	s.logger.Info("run started",
		log.RunIDKey, info.ID,
		log.RunNameKey, info.Name,
	)
	return nil
}

func (s *LogSink) EndRun(runID string, end time.Time) error {
	s.logger.Info("run ended",
		log.RunIDKey, runID,
	)
	return nil
}

func (s *LogSink) LogParams(runID string, params []Param) error {
	s.logger.Info("params logged",
		log.RunIDKey, runID,
		log.ParamCountKey, len(params),
	)
	for _, p := range params {
		s.logger.Debug("param",
			log.RunIDKey, runID,
			"key", p.Key,
			"value", p.Value,
		)
	}
	return nil
}

func (s *LogSink) LogMetric(runID string, m Metric) error {
	s.logger.Info("metric logged",
		log.RunIDKey, runID,
		log.MetricNameKey, m.Key,
		log.MetricValueKey, m.Value,
		log.MetricStepKey, m.Step,
	)
	return nil
}

func (s *LogSink) Flush() error { return nil }
func (s *LogSink) Close() error { return nil }

var _ Sink = (*LogSink)(nil)
