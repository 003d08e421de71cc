package tracking

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT
);

CREATE TABLE IF NOT EXISTS params (
	run_id TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS metrics (
	run_id    TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     REAL NOT NULL,
	step      INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
`

// SQLiteSink persists runs, params and metrics in a SQLite database.
// Timestamps are stored as RFC3339 text; param batches are written in a
// single transaction.
type SQLiteSink struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// NewSQLiteSink opens the database at path (":memory:" works for tests)
// and creates the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "tracking: open sqlite")
	}
	// An in-memory database exists per connection; cap the pool so
	// every statement sees the same database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite pragma")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite pragma fk")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite migrate")
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SQLiteSink) StartRun(info RunInfo) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, name, start_time) VALUES (?, ?, ?)`,
		info.ID, info.Name, info.StartTime.UTC().Format(time.RFC3339Nano),
	)
	return errors.Wrap(err, "tracking: sqlite start run")
}

func (s *SQLiteSink) EndRun(runID string, end time.Time) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	res, err := s.db.Exec(
		`UPDATE runs SET end_time = ? WHERE id = ?`,
		end.UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return errors.Wrap(err, "tracking: sqlite end run")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "tracking: sqlite end run")
	}
	if affected == 0 {
		return errors.NewValueError("tracking.SQLiteSink.EndRun", fmt.Sprintf("unknown run %q", runID))
	}
	return nil
}

func (s *SQLiteSink) LogParams(runID string, params []Param) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	if len(params) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "tracking: sqlite begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`INSERT INTO params (run_id, key, value) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "tracking: sqlite prepare params")
	}
	defer stmt.Close()

	for _, p := range params {
		if _, err := stmt.Exec(runID, p.Key, p.Value); err != nil {
			return errors.Wrap(err, "tracking: sqlite insert param")
		}
	}
	return errors.Wrap(tx.Commit(), "tracking: sqlite commit params")
}

func (s *SQLiteSink) LogMetric(runID string, m Metric) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	_, err := s.db.Exec(
		`INSERT INTO metrics (run_id, key, value, step, timestamp) VALUES (?, ?, ?, ?, ?)`,
		runID, m.Key, m.Value, m.Step, m.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return errors.Wrap(err, "tracking: sqlite log metric")
}

// Flush is a no-op; every write is committed synchronously.
func (s *SQLiteSink) Flush() error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	return nil
}

// Close closes the underlying database. Idempotent.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Wrap(s.db.Close(), "tracking: sqlite close")
}

// Runs returns every stored run ordered by start time.
func (s *SQLiteSink) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query(`SELECT id, name, start_time FROM runs ORDER BY start_time`)
	if err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite list runs")
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var started string
		if err := rows.Scan(&info.ID, &info.Name, &started); err != nil {
			return nil, errors.Wrap(err, "tracking: sqlite scan run")
		}
		info.StartTime, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, errors.Wrap(err, "tracking: sqlite parse start time")
		}
		runs = append(runs, info)
	}
	return runs, errors.Wrap(rows.Err(), "tracking: sqlite list runs")
}

// ParamsFor returns the parameters stored for a run, in insert order.
func (s *SQLiteSink) ParamsFor(runID string) ([]Param, error) {
	rows, err := s.db.Query(`SELECT key, value FROM params WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite list params")
	}
	defer rows.Close()

	var params []Param
	for rows.Next() {
		var p Param
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, errors.Wrap(err, "tracking: sqlite scan param")
		}
		params = append(params, p)
	}
	return params, errors.Wrap(rows.Err(), "tracking: sqlite list params")
}

// MetricsFor returns the metrics stored for a run, in insert order.
func (s *SQLiteSink) MetricsFor(runID string) ([]Metric, error) {
	rows, err := s.db.Query(
		`SELECT key, value, step, timestamp FROM metrics WHERE run_id = ? ORDER BY rowid`, runID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "tracking: sqlite list metrics")
	}
	defer rows.Close()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		var ts string
		if err := rows.Scan(&m.Key, &m.Value, &m.Step, &ts); err != nil {
			return nil, errors.Wrap(err, "tracking: sqlite scan metric")
		}
		m.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, errors.Wrap(err, "tracking: sqlite parse timestamp")
		}
		metrics = append(metrics, m)
	}
	return metrics, errors.Wrap(rows.Err(), "tracking: sqlite list metrics")
}

// EndTime reports the stored end time of a run, if the run was ended.
func (s *SQLiteSink) EndTime(runID string) (time.Time, bool, error) {
	var end sql.NullString
	err := s.db.QueryRow(`SELECT end_time FROM runs WHERE id = ?`, runID).Scan(&end)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "tracking: sqlite end time")
	}
	if !end.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, end.String)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "tracking: sqlite parse end time")
	}
	return t, true, nil
}

var _ Sink = (*SQLiteSink)(nil)
