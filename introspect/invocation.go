package introspect

import (
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Invocation captures how a fit-style call was made: positional values in
// declaration order plus keyword values. The zero value is an empty call.
type Invocation struct {
	Args   []any
	Kwargs map[string]any
}

// Positional builds an invocation from positional values only.
func Positional(args ...any) Invocation {
	return Invocation{Args: args}
}

// Inputs holds the training inputs recovered from an invocation.
// SampleWeight is nil when the call carried none.
type Inputs struct {
	X            any
	Y            any
	SampleWeight any
}

// ExtractionPolicy names the pair of parameters that carry the training
// inputs. Most estimators follow the (X, y) convention; a few use different
// names, which is why the pair is explicit rather than hard-coded.
type ExtractionPolicy struct {
	XName string
	YName string
}

// DefaultPolicy extracts the conventional (X, y) pair.
var DefaultPolicy = ExtractionPolicy{XName: ParamX, YName: ParamY}

// PolicyFor derives the extraction policy from the first two parameters of a
// fit signature. Signatures with fewer than two parameters cannot carry an
// (X, y) pair and yield an IntrospectionError.
func PolicyFor(fitSig Signature) (ExtractionPolicy, error) {
	if fitSig.Len() < 2 {
		return ExtractionPolicy{}, errors.NewIntrospectionError(
			"fit signature "+fitSig.String(), "fewer than two parameters, cannot name an (X, y) pair")
	}
	names := fitSig.Names()
	return ExtractionPolicy{XName: names[0], YName: names[1]}, nil
}

// RecoverXY reconstructs the feature matrix and target from an invocation.
//
// Positional values win: with two or more positionals the first two are
// returned verbatim and keywords are ignored. With exactly one positional it
// becomes X and the target is looked up by the policy's Y name. With none,
// both are looked up by name. A missing keyword is a MissingArgumentError;
// presence decides, so an explicitly stored nil value is returned as-is.
func (p ExtractionPolicy) RecoverXY(inv Invocation) (x, y any, err error) {
	const op = "introspect.RecoverXY"

	if len(inv.Args) >= 2 {
		return inv.Args[0], inv.Args[1], nil
	}

	if len(inv.Args) == 1 {
		yVal, ok := inv.Kwargs[p.YName]
		if !ok {
			return nil, nil, errors.NewMissingArgumentError(op, p.YName)
		}
		return inv.Args[0], yVal, nil
	}

	xVal, ok := inv.Kwargs[p.XName]
	if !ok {
		return nil, nil, errors.NewMissingArgumentError(op, p.XName)
	}
	yVal, ok := inv.Kwargs[p.YName]
	if !ok {
		return nil, nil, errors.NewMissingArgumentError(op, p.YName)
	}
	return xVal, yVal, nil
}

// SampleWeight extracts the sample weight from an invocation, or nil when the
// signature does not declare one or the call did not pass one.
//
// When the weight's declared position is covered by the positional values,
// that value wins; otherwise the keyword value is used if present.
func SampleWeight(sig Signature, inv Invocation) any {
	idx := sig.Index(ParamSampleWeight)
	if idx < 0 {
		return nil
	}
	if len(inv.Args) > idx {
		return inv.Args[idx]
	}
	if w, ok := inv.Kwargs[ParamSampleWeight]; ok {
		return w
	}
	return nil
}

// Recover reconstructs the full training inputs: the (X, y) pair under the
// policy plus the sample weight when fitSig declares one.
func (p ExtractionPolicy) Recover(fitSig Signature, inv Invocation) (Inputs, error) {
	x, y, err := p.RecoverXY(inv)
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{X: x, Y: y, SampleWeight: SampleWeight(fitSig, inv)}, nil
}

// ArgsForEvaluation assembles the argument list for a score-style call from a
// fit invocation. The (X, y) pair is always recovered; the sample weight is
// appended only when both the fit and score signatures declare one, so the
// result has either two or three elements.
//
// The extraction policy is derived from the fit signature's first two
// parameter names.
func ArgsForEvaluation(fitSig, scoreSig Signature, inv Invocation) ([]any, error) {
	policy, err := PolicyFor(fitSig)
	if err != nil {
		return nil, err
	}
	x, y, err := policy.RecoverXY(inv)
	if err != nil {
		return nil, err
	}

	if fitSig.Contains(ParamSampleWeight) && scoreSig.Contains(ParamSampleWeight) {
		return []any{x, y, SampleWeight(fitSig, inv)}, nil
	}
	return []any{x, y}, nil
}
