package introspect

import (
	"testing"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// declaringEstimator declares both fit and score signatures.
type declaringEstimator struct {
	fit   Signature
	score Signature
}

func (d *declaringEstimator) FitSignature() Signature   { return d.fit }
func (d *declaringEstimator) ScoreSignature() Signature { return d.score }

// plainEstimator declares nothing.
type plainEstimator struct{}

// wrapper forwards to an inner value.
type wrapper struct {
	inner any
}

func (w *wrapper) UnwrapEstimator() any { return w.inner }

// selfWrapper unwraps to itself, forming a cycle.
type selfWrapper struct{}

func (s *selfWrapper) UnwrapEstimator() any { return s }

// declaringWrapper wraps nothing but declares its own signature.
type declaringWrapper struct {
	sig Signature
}

func (d *declaringWrapper) UnwrapEstimator() any    { return nil }
func (d *declaringWrapper) FitSignature() Signature { return d.sig }

func TestSignatureBasics(t *testing.T) {
	sig := NewSignature(ParamX, ParamY, ParamSampleWeight)

	if got := sig.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if got := sig.Index(ParamSampleWeight); got != 2 {
		t.Errorf("Index(sample_weight) = %d, want 2", got)
	}
	if got := sig.Index("missing"); got != -1 {
		t.Errorf("Index(missing) = %d, want -1", got)
	}
	if !sig.Contains(ParamY) {
		t.Error("Contains(y) = false, want true")
	}
	if got := sig.String(); got != "(X, y, sample_weight)" {
		t.Errorf("String() = %q", got)
	}

	// Names returns a copy; mutating it must not affect the signature.
	names := sig.Names()
	names[0] = "mutated"
	if sig.Names()[0] != ParamX {
		t.Error("Names() leaked internal state")
	}
}

func TestSignatureImmutableConstruction(t *testing.T) {
	raw := []string{ParamX, ParamY}
	sig := NewSignature(raw...)
	raw[0] = "mutated"
	if sig.Names()[0] != ParamX {
		t.Error("NewSignature did not copy its input")
	}
}

func TestFitSignatureOf(t *testing.T) {
	declared := NewSignature(ParamX, ParamY, ParamSampleWeight)

	tests := []struct {
		name    string
		target  any
		want    string
		wantErr bool
	}{
		{
			name:   "direct declarer",
			target: &declaringEstimator{fit: declared},
			want:   "(X, y, sample_weight)",
		},
		{
			name:   "single wrapper",
			target: &wrapper{inner: &declaringEstimator{fit: declared}},
			want:   "(X, y, sample_weight)",
		},
		{
			name: "nested wrappers",
			target: &wrapper{inner: &wrapper{
				inner: &declaringEstimator{fit: NewSignature(ParamX, ParamY)},
			}},
			want: "(X, y)",
		},
		{
			name:   "wrapper around nil declares itself",
			target: &declaringWrapper{sig: NewSignature(ParamX, ParamY)},
			want:   "(X, y)",
		},
		{
			name:    "no declaration",
			target:  &plainEstimator{},
			wantErr: true,
		},
		{
			name:    "wrapper around non-declarer",
			target:  &wrapper{inner: &plainEstimator{}},
			wantErr: true,
		},
		{
			name:    "nil target",
			target:  nil,
			wantErr: true,
		},
		{
			name:    "cyclic wrapper",
			target:  &selfWrapper{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := FitSignatureOf(tt.target)

			if (err != nil) != tt.wantErr {
				t.Errorf("FitSignatureOf() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				var introErr *errors.IntrospectionError
				if !errors.As(err, &introErr) {
					t.Errorf("error type = %T, want *errors.IntrospectionError", err)
				}
				return
			}
			if got := sig.String(); got != tt.want {
				t.Errorf("FitSignatureOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScoreSignatureOf(t *testing.T) {
	est := &declaringEstimator{
		fit:   NewSignature(ParamX, ParamY, ParamSampleWeight),
		score: NewSignature(ParamX, ParamY),
	}

	sig, err := ScoreSignatureOf(&wrapper{inner: est})
	if err != nil {
		t.Fatalf("ScoreSignatureOf() unexpected error: %v", err)
	}
	if got := sig.String(); got != "(X, y)" {
		t.Errorf("ScoreSignatureOf() = %s, want (X, y)", got)
	}

	if _, err := ScoreSignatureOf(&plainEstimator{}); err == nil {
		t.Error("ScoreSignatureOf() on a non-declarer should fail")
	}
}
