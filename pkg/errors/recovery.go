// Package errors provides comprehensive error handling utilities for fitlog.
//
// This file contains the panic recovery layer used by the autologging
// session. Estimator implementations are third-party code from the
// session's point of view: a panicking Fit, Predict or Score must never
// take the tracking run down with it. Recovered panics are converted
// into structured errors carrying the original panic value and a stack
// trace captured at the recovery site.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is the error form of a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic().
	PanicValue interface{}

	// StackTrace is the goroutine stack captured when the panic was
	// recovered.
	StackTrace string

	// Operation names the guarded operation, e.g. "autolog.fit" or
	// "autolog.metric.f1_score".
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil; the panic value is not treated as a wrapped error.
func (e *PanicError) Unwrap() error {
	return nil
}

// String renders the error together with the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError builds a PanicError for the given operation and panic
// value, capturing the current stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts an in-flight panic into an error assigned to *err.
// It must be deferred inside the function whose named error result it
// fills:
//
//	func (s *Session) dispatch(est any) (err error) {
//	    defer Recover(&err, "autolog.fit")
//	    // estimator code that may panic
//	    return nil
//	}
//
// When the function already carries an error at panic time, the panic
// message wraps it so neither failure is lost.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)

		if *err != nil {
			// Wrap existing error with panic information
			*err = fmt.Errorf("panic in %s: %v (original error: %w)",
				operation, r, *err)
		} else {
			// No existing error, return the panic as error
			*err = panicErr
		}
	}
}

// SafeExecute runs fn under panic recovery. It returns fn's error
// unchanged on a normal return and a PanicError when fn panics.
//
// The autologging session guards every excursion into estimator code
// this way, so a broken Fit or a panicking metric function degrades
// into a warning instead of aborting the whole run:
//
//	err := SafeExecute("autolog.metric.f1_score", func() error {
//	    value, err := spec.Compute(yTrue, yPred, weight)
//	    ...
//	})
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
