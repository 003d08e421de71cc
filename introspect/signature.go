// Package introspect models the call shape of fit-style training methods:
// which parameters they accept, how a concrete call was made, and how to
// recover the training inputs (X, y and an optional sample weight) from that
// call.
//
// Go offers no runtime access to parameter names, so estimators declare their
// layout explicitly by implementing SignatureDeclarer. Wrapper types (such as
// the autologging estimator wrapper) are transparent: signature resolution
// follows UnwrapEstimator chains to the innermost value before consulting the
// declaration.
//
// Parameter names use the scikit-learn keyword spellings ("X", "y",
// "sample_weight") because they are data keys shared with keyword arguments,
// not Go identifiers.
package introspect

import (
	"fmt"
	"strings"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// Canonical parameter names of fit-style methods.
const (
	// ParamX is the conventional name of the feature matrix parameter.
	ParamX = "X"
	// ParamY is the conventional name of the target parameter.
	ParamY = "y"
	// ParamSampleWeight is the conventional name of the per-sample weight
	// parameter.
	ParamSampleWeight = "sample_weight"
)

// maxUnwrapDepth bounds UnwrapEstimator chains so a cyclic wrapper cannot
// hang signature resolution.
const maxUnwrapDepth = 100

// Signature is the ordered parameter list of a fit-style method, receiver
// excluded. The zero value is an empty signature. Signatures are immutable;
// Names returns a copy.
type Signature struct {
	names []string
}

// NewSignature builds a signature from parameter names in declaration order.
func NewSignature(names ...string) Signature {
	owned := make([]string, len(names))
	copy(owned, names)
	return Signature{names: owned}
}

// Names returns the parameter names in declaration order.
func (s Signature) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of declared parameters.
func (s Signature) Len() int {
	return len(s.names)
}

// Index returns the position of name in the signature, or -1 when absent.
func (s Signature) Index(name string) int {
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Contains reports whether the signature declares name.
func (s Signature) Contains(name string) bool {
	return s.Index(name) >= 0
}

// String renders the signature as "(X, y, sample_weight)".
func (s Signature) String() string {
	return "(" + strings.Join(s.names, ", ") + ")"
}

// SignatureDeclarer is implemented by estimators that declare the parameter
// layout of their fit method.
type SignatureDeclarer interface {
	FitSignature() Signature
}

// ScoreSignatureDeclarer is implemented by estimators that declare the
// parameter layout of their score method.
type ScoreSignatureDeclarer interface {
	ScoreSignature() Signature
}

// Unwrapper is implemented by estimator wrappers. Signature resolution
// follows the chain of wrapped values before looking for a declaration.
type Unwrapper interface {
	UnwrapEstimator() any
}

// FitSignatureOf resolves the fit signature of target, following wrapper
// chains. Targets that neither declare a signature nor wrap something that
// does yield an IntrospectionError.
func FitSignatureOf(target any) (Signature, error) {
	resolved, err := unwrap(target)
	if err != nil {
		return Signature{}, err
	}
	decl, ok := resolved.(SignatureDeclarer)
	if !ok {
		return Signature{}, errors.NewIntrospectionError(typeName(resolved), "no fit signature declared")
	}
	return decl.FitSignature(), nil
}

// ScoreSignatureOf resolves the score signature of target, following wrapper
// chains.
func ScoreSignatureOf(target any) (Signature, error) {
	resolved, err := unwrap(target)
	if err != nil {
		return Signature{}, err
	}
	decl, ok := resolved.(ScoreSignatureDeclarer)
	if !ok {
		return Signature{}, errors.NewIntrospectionError(typeName(resolved), "no score signature declared")
	}
	return decl.ScoreSignature(), nil
}

// unwrap follows UnwrapEstimator chains to the innermost value. A wrapper
// returning nil terminates the chain at the wrapper itself.
func unwrap(target any) (any, error) {
	if target == nil {
		return nil, errors.NewIntrospectionError("<nil>", "target is nil")
	}
	current := target
	for depth := 0; depth < maxUnwrapDepth; depth++ {
		w, ok := current.(Unwrapper)
		if !ok {
			return current, nil
		}
		inner := w.UnwrapEstimator()
		if inner == nil {
			return current, nil
		}
		current = inner
	}
	return nil, errors.NewIntrospectionError(typeName(target), "unwrap chain too deep (possible cycle)")
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
