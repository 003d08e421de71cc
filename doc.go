// Package fitlog provides automatic experiment tracking for machine
// learning code written in Go.
//
// fitlog watches a model being fitted and records what a practitioner
// would otherwise log by hand: the estimator's hyperparameters, a
// per-family set of evaluation metrics computed on the training data,
// and the run lifecycle itself. Recording never interferes with
// training — a metric that cannot be computed is skipped with a
// warning and the fit result is returned unchanged.
//
// # Features
//
// - Autologging: one Session.Fit call trains, logs params and metrics
// - Task-aware metrics: regressors, classifiers and clusterers each get their own metric set
// - Failure isolation: a failing metric never fails the run
// - Pluggable sinks: in-memory, structured log, InfluxDB, Prometheus, SQLite, or any combination
// - Registry: estimators register themselves at load time and are discoverable by name
//
// # Installation
//
//	go get github.com/fitlog-ml/fitlog
//
// # Quick Start
//
// Fitting a linear regression under a tracking session:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/fitlog-ml/fitlog/autolog"
//	    "github.com/fitlog-ml/fitlog/introspect"
//	    "github.com/fitlog-ml/fitlog/linear"
//	    "github.com/fitlog-ml/fitlog/tracking"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
//	    y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})
//
//	    sink := tracking.NewMemorySink()
//	    session := autolog.NewSession(tracking.NewClient(sink))
//
//	    model := linear.NewLinearRegression()
//	    run, err := session.Fit(model, introspect.Positional(X, y))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer run.End()
//
//	    for _, m := range sink.MetricsFor(run.ID()) {
//	        fmt.Printf("%s = %.4f\n", m.Key, m.Value)
//	    }
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - autolog: the Session that fits estimators and records runs
//   - introspect: fit-call signatures and argument recovery
//   - tracking: runs, params, metrics and the sink backends
//   - metrics: weighted regression, classification and clustering scores
//   - core/estimator: estimator interfaces, state and the registry
//   - linear, cluster, preprocessing: reference estimators used throughout the tests
//
// # Estimator families
//
// The session decides what to log from the estimator's registered kind:
//
//	regressors:  mse, rmse, mae, r2_score, training_score
//	classifiers: precision_score, recall_score, f1_score, accuracy_score, training_score
//	clusterers:  completeness_score, homogeneity_score, v_measure_score
//
// Any estimator that implements the interfaces in core/estimator can
// participate; the models shipped here are minimal fixtures kept for
// the integration tests and the examples.
package fitlog
