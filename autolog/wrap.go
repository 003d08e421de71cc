package autolog

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/tracking"
)

// Logged is an estimator wrapper whose Fit routes through an autologging
// session. The wrapper is transparent to introspection: signature
// resolution unwraps to the inner estimator.
type Logged struct {
	est     any
	session *Session

	mu  sync.Mutex
	run *tracking.Run
}

// Wrap wraps est so every Fit is autologged through s.
func Wrap(est any, s *Session) *Logged {
	return &Logged{est: est, session: s}
}

// UnwrapEstimator returns the wrapped estimator.
func (l *Logged) UnwrapEstimator() any {
	return l.est
}

// Run returns the run recorded by the most recent fit, or nil before the
// first one.
func (l *Logged) Run() *tracking.Run {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.run
}

// Fit trains the wrapped estimator and records the run.
func (l *Logged) Fit(X, y mat.Matrix) error {
	run, err := l.session.Fit(l.est, introspect.Positional(X, y))
	if err != nil {
		return err
	}
	l.setRun(run)
	return nil
}

// FitWeighted trains with per-sample weights. The weight reaches the
// inner estimator only when its fit signature declares one.
func (l *Logged) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error {
	inv := introspect.Positional(X, y)
	if sampleWeight != nil {
		inv.Kwargs = map[string]any{introspect.ParamSampleWeight: sampleWeight}
	}
	run, err := l.session.Fit(l.est, inv)
	if err != nil {
		return err
	}
	l.setRun(run)
	return nil
}

func (l *Logged) setRun(run *tracking.Run) {
	l.mu.Lock()
	l.run = run
	l.mu.Unlock()
}

var (
	_ estimator.Fitter         = (*Logged)(nil)
	_ estimator.WeightedFitter = (*Logged)(nil)
	_ introspect.Unwrapper     = (*Logged)(nil)
)
