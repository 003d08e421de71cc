package tracking

import (
	"context"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Environment variables consumed by InfluxConfigFromEnv.
const (
	EnvInfluxURL    = "FITLOG_INFLUX_URL"
	EnvInfluxToken  = "FITLOG_INFLUX_TOKEN"
	EnvInfluxOrg    = "FITLOG_INFLUX_ORG"
	EnvInfluxBucket = "FITLOG_INFLUX_BUCKET"
)

// Measurement names written by InfluxSink.
const (
	measurementRun    = "training_run"
	measurementParam  = "training_param"
	measurementMetric = "training_metric"
)

// InfluxConfig carries the connection settings for an InfluxSink.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxConfigFromEnv reads the FITLOG_INFLUX_* variables. Everything
// but the token falls back to a local development default.
func InfluxConfigFromEnv() InfluxConfig {
	cfg := InfluxConfig{
		URL:    os.Getenv(EnvInfluxURL),
		Token:  os.Getenv(EnvInfluxToken),
		Org:    os.Getenv(EnvInfluxOrg),
		Bucket: os.Getenv(EnvInfluxBucket),
	}
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8086"
	}
	if cfg.Org == "" {
		cfg.Org = "fitlog"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "training-runs"
	}
	return cfg
}

// InfluxSink writes runs, params and metrics as InfluxDB points through
// the blocking write API. One point is written per metric observation
// and per param batch.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking

	mu       sync.RWMutex
	runNames map[string]string
	closed   bool
}

// NewInfluxSink connects to the configured InfluxDB instance. The URL
// and token are required.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	if cfg.URL == "" {
		return nil, errors.NewValueError("tracking.NewInfluxSink", "URL must not be empty")
	}
	if cfg.Token == "" {
		return nil, errors.NewValueError("tracking.NewInfluxSink", "token must not be empty")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		runNames: make(map[string]string),
	}, nil
}

func (s *InfluxSink) runName(runID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runNames[runID]
}

func (s *InfluxSink) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *InfluxSink) StartRun(info RunInfo) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	s.mu.Lock()
	s.runNames[info.ID] = info.Name
	s.mu.Unlock()

	p := influxdb2.NewPoint(
		measurementRun,
		map[string]string{"run_id": info.ID, "run_name": info.Name},
		map[string]interface{}{"event": "start"},
		info.StartTime,
	)
	return errors.Wrap(s.writeAPI.WritePoint(context.Background(), p), "tracking: influx start run")
}

func (s *InfluxSink) EndRun(runID string, end time.Time) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	p := influxdb2.NewPoint(
		measurementRun,
		map[string]string{"run_id": runID, "run_name": s.runName(runID)},
		map[string]interface{}{"event": "end"},
		end,
	)
	return errors.Wrap(s.writeAPI.WritePoint(context.Background(), p), "tracking: influx end run")
}

func (s *InfluxSink) LogParams(runID string, params []Param) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	if len(params) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(params))
	for _, p := range params {
		fields[p.Key] = p.Value
	}
	point := influxdb2.NewPoint(
		measurementParam,
		map[string]string{"run_id": runID, "run_name": s.runName(runID)},
		fields,
		time.Now(),
	)
	return errors.Wrap(s.writeAPI.WritePoint(context.Background(), point), "tracking: influx log params")
}

func (s *InfluxSink) LogMetric(runID string, m Metric) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	p := influxdb2.NewPoint(
		measurementMetric,
		map[string]string{"run_id": runID, "run_name": s.runName(runID), "key": m.Key},
		map[string]interface{}{"value": m.Value, "step": m.Step},
		m.Timestamp,
	)
	return errors.Wrap(s.writeAPI.WritePoint(context.Background(), p), "tracking: influx log metric")
}

func (s *InfluxSink) Flush() error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	return errors.Wrap(s.writeAPI.Flush(context.Background()), "tracking: influx flush")
}

// Close shuts the underlying client down. Idempotent.
func (s *InfluxSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Close()
	return nil
}

var _ Sink = (*InfluxSink)(nil)
