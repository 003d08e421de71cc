// Package autolog records estimator training to a tracking backend without
// the estimator cooperating beyond its capability interfaces: given a fitted
// (or about-to-be-fitted) estimator plus the invocation that trained it, a
// session recovers the training inputs, logs the hyperparameters, fits, and
// then computes the metric catalog of the estimator's task family.
//
// Failure handling is deliberately asymmetric. Problems that make the
// evaluation data unusable (no fit signature, missing or malformed
// arguments) abort the call. Everything downstream of a successful fit is
// tolerant: a failing metric computation or a failing sink write becomes a
// warning through pkg/errors and never interrupts the remaining work.
package autolog

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/pkg/errors"
	"github.com/fitlog-ml/fitlog/pkg/log"
	"github.com/fitlog-ml/fitlog/pkg/maputil"
	"github.com/fitlog-ml/fitlog/tracking"
)

// Session drives autologging against one tracking client. Sessions are
// stateless between Fit calls and safe for sequential reuse across
// estimators.
type Session struct {
	client  *tracking.Client
	policy  *introspect.ExtractionPolicy
	version string
	runName string
	logger  log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy fixes the extraction policy instead of deriving it from each
// estimator's fit signature.
func WithPolicy(p introspect.ExtractionPolicy) Option {
	return func(s *Session) { s.policy = &p }
}

// WithLibraryVersion sets the estimator-library version checked against
// MinSupportedVersion at construction.
func WithLibraryVersion(v string) Option {
	return func(s *Session) { s.version = v }
}

// WithLogger sets the session logger.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunName fixes the name of every run the session starts. The default
// is the estimator's type name.
func WithRunName(name string) Option {
	return func(s *Session) { s.runName = name }
}

// NewSession creates an autologging session on client. A nil client gets a
// discarding tracking client. An unsupported library version produces a
// single warning here; the session still works.
func NewSession(client *tracking.Client, opts ...Option) *Session {
	s := &Session{
		client:  client,
		version: estimator.LibraryVersion,
		logger:  log.GetLoggerWithName("autolog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = tracking.NewClient(nil)
	}
	if !IsSupportedVersion(s.version) {
		errors.Warn(errors.Newf(
			"autolog: library version %q is below the minimum supported %s; autologging may not succeed",
			s.version, MinSupportedVersion))
		s.logger.Warn("unsupported library version",
			log.LibraryVersionKey, s.version,
		)
	}
	return s
}

// recovered bundles the introspection results of one fit invocation after
// coercion to gonum types. weight is nil when the call carried none.
type recovered struct {
	fitSig introspect.Signature
	x      mat.Matrix
	y      *mat.VecDense
	weight *mat.VecDense
}

func (s *Session) policyFor(fitSig introspect.Signature) (introspect.ExtractionPolicy, error) {
	if s.policy != nil {
		return *s.policy, nil
	}
	return introspect.PolicyFor(fitSig)
}

// recoverInputs runs the introspection pipeline: signature, argument
// recovery, type coercion. Every failure here aborts the logging call.
func (s *Session) recoverInputs(est any, inv introspect.Invocation) (recovered, error) {
	fitSig, err := introspect.FitSignatureOf(est)
	if err != nil {
		return recovered{}, err
	}
	policy, err := s.policyFor(fitSig)
	if err != nil {
		return recovered{}, err
	}
	inputs, err := policy.Recover(fitSig, inv)
	if err != nil {
		return recovered{}, err
	}

	x, err := toFeatureMatrix(inputs.X)
	if err != nil {
		return recovered{}, err
	}
	y, err := toTargetVector(inputs.Y)
	if err != nil {
		return recovered{}, err
	}
	w, err := toWeightVector(inputs.SampleWeight)
	if err != nil {
		return recovered{}, err
	}
	return recovered{fitSig: fitSig, x: x, y: y, weight: w}, nil
}

// Fit trains est with the inputs recovered from inv and records the whole
// thing as one run: hyperparameters before fitting, the task family's
// metric catalog and the training score after. The run is returned open so
// the caller can add to it; a fit error ends the run and propagates.
func (s *Session) Fit(est any, inv introspect.Invocation) (*tracking.Run, error) {
	rec, err := s.recoverInputs(est, inv)
	if err != nil {
		return nil, err
	}

	run, err := s.client.NewRun(s.runNameFor(est))
	if err != nil {
		return nil, err
	}
	s.logger.Info("autologging fit",
		log.ModelNameKey, estimatorName(est),
		log.OperationKey, log.OperationFit,
		log.RunIDKey, run.ID(),
	)
	s.logEstimatorParams(run, est)

	fitErr := errors.SafeExecute("autolog.fit", func() error {
		return dispatchFit(est, rec)
	})
	if fitErr != nil {
		s.tryLog(run.End(), "run end")
		return nil, fitErr
	}

	s.observe(run, est, rec, inv)
	return run, nil
}

// ObserveFit records an already-fitted estimator into an existing run:
// the same introspection pipeline as Fit, then metrics and training score,
// but no parameter logging and no fitting.
func (s *Session) ObserveFit(run *tracking.Run, est any, inv introspect.Invocation) error {
	if run == nil {
		return errors.NewValueError("autolog.Session.ObserveFit", "run is nil")
	}
	rec, err := s.recoverInputs(est, inv)
	if err != nil {
		return err
	}
	s.observe(run, est, rec, inv)
	return nil
}

// dispatchFit prefers the weighted fitting path when a weight was
// recovered and the estimator supports it.
func dispatchFit(est any, rec recovered) error {
	if rec.weight != nil {
		if wf, ok := est.(estimator.WeightedFitter); ok {
			return wf.FitWeighted(rec.x, rec.y, vecSlice(rec.weight))
		}
	}
	f, ok := est.(estimator.Fitter)
	if !ok {
		return errors.NewValueError("autolog.Session.Fit",
			fmt.Sprintf("%T does not implement Fit", est))
	}
	return f.Fit(rec.x, rec.y)
}

// observe runs the post-fit half: the family catalog, then the training
// score. Everything in here is tolerant.
func (s *Session) observe(run *tracking.Run, est any, rec recovered, inv introspect.Invocation) {
	specs, kind := catalogFor(est)
	if len(specs) > 0 {
		s.logCatalogMetrics(run, est, kind, specs, rec)
	}
	s.logTrainingScore(run, est, rec.fitSig, inv)
}

// logCatalogMetrics folds over the family catalog in order. Each
// computation runs under panic recovery; a failure warns with the metric's
// qualified name and never suppresses later entries.
func (s *Session) logCatalogMetrics(run *tracking.Run, est any, kind estimator.Kind, specs []MetricSpec, rec recovered) {
	var yPred *mat.VecDense
	perr := errors.SafeExecute("autolog.predict", func() error {
		p, err := predictions(est, kind, rec.x)
		if err != nil {
			return err
		}
		yPred = p
		return nil
	})
	if perr != nil {
		errors.Warn(errors.Newf("Failed to autolog metrics for %s. Logging error: %v",
			estimatorName(est), perr))
		return
	}

	// 重みはfitシグネチャが宣言している場合のみ指標へ渡されます。
	// クラスタリングのカタログは重みを取りません。
	weight := rec.weight
	if kind == estimator.KindCluster || !rec.fitSig.Contains(introspect.ParamSampleWeight) {
		weight = nil
	}

	for _, spec := range specs {
		var value float64
		cerr := errors.SafeExecute("autolog.metric."+spec.Name, func() error {
			v, err := spec.Compute(rec.y, yPred, weight)
			if err != nil {
				return err
			}
			value = v
			return nil
		})
		if cerr != nil {
			errors.Warn(errors.NewMetricComputationError(spec.Name, spec.QualifiedName, cerr))
			continue
		}
		s.tryLog(run.LogMetric(spec.Name, value), spec.Name)
	}
}

// logTrainingScore records the estimator's own score as "training_score".
// The scoring arguments come from the original invocation: the sample
// weight rides along only when both the fit and score signatures declare
// it. A score failure warns in the same format as a failing catalog metric.
func (s *Session) logTrainingScore(run *tracking.Run, est any, fitSig introspect.Signature, inv introspect.Invocation) {
	scorer, ok := est.(estimator.Scorer)
	if !ok {
		return
	}
	qualified := estimatorName(est) + ".Score"

	scoreSig, err := introspect.ScoreSignatureOf(est)
	if err != nil {
		// スコアシグネチャ未宣言の場合は (X, y) とみなします。
		scoreSig = introspect.NewSignature(introspect.ParamX, introspect.ParamY)
	}
	args, err := introspect.ArgsForEvaluation(fitSig, scoreSig, inv)
	if err != nil {
		errors.Warn(errors.NewMetricComputationError("training_score", qualified, err))
		return
	}

	var value float64
	serr := errors.SafeExecute("autolog.score", func() error {
		x, err := toFeatureMatrix(args[0])
		if err != nil {
			return err
		}
		y, err := toTargetVector(args[1])
		if err != nil {
			return err
		}
		if len(args) == 3 {
			w, err := toWeightVector(args[2])
			if err != nil {
				return err
			}
			if ws, ok := est.(estimator.WeightedScorer); ok {
				v, err := ws.ScoreWeighted(x, y, vecSlice(w))
				if err != nil {
					return err
				}
				value = v
				return nil
			}
		}
		v, err := scorer.Score(x, y)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if serr != nil {
		errors.Warn(errors.NewMetricComputationError("training_score", qualified, serr))
		return
	}
	s.tryLog(run.LogMetric("training_score", value), "training_score")
}

// logEstimatorParams records the hyperparameters through the truncating
// and chunking pipeline. Estimators without GetParams log nothing.
func (s *Session) logEstimatorParams(run *tracking.Run, est any) {
	pg, ok := est.(estimator.ParamsGetter)
	if !ok {
		return
	}
	raw := pg.GetParams()
	if len(raw) == 0 {
		return
	}

	strs := make(map[string]string, len(raw))
	for k, v := range raw {
		strs[k] = fmt.Sprintf("%v", v)
	}
	truncated, err := maputil.Truncate(strs, tracking.MaxEntityKeyLength, tracking.MaxParamValueLength)
	if err != nil {
		s.tryLog(err, "params")
		return
	}
	chunks, err := maputil.Chunk(truncated, tracking.MaxParamsPerBatch)
	if err != nil {
		s.tryLog(err, "params")
		return
	}
	for _, chunk := range chunks {
		keys := make([]string, 0, len(chunk))
		for k := range chunk {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		params := make([]tracking.Param, 0, len(chunk))
		for _, k := range keys {
			params = append(params, tracking.Param{Key: k, Value: chunk[k]})
		}
		s.tryLog(run.LogParams(params), "params")
	}
}

// tryLog is the tolerant sink path: recording failures become warnings,
// never error returns, so logging cannot break training.
func (s *Session) tryLog(err error, entity string) {
	if err == nil {
		return
	}
	errors.Warn(errors.Wrapf(err, "autolog: failed to record %s", entity))
}

func (s *Session) runNameFor(est any) string {
	if s.runName != "" {
		return s.runName
	}
	return estimatorName(est)
}

// estimatorName renders est's concrete type without package path or
// pointer marker, e.g. "LinearRegression".
func estimatorName(est any) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", est), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
