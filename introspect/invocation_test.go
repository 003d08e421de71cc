package introspect

import (
	"testing"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func TestRecoverXY(t *testing.T) {
	policy := DefaultPolicy

	tests := []struct {
		name    string
		inv     Invocation
		wantX   any
		wantY   any
		wantErr bool
		missing string
	}{
		{
			name:  "two positionals",
			inv:   Invocation{Args: []any{"XPOS", "YPOS"}},
			wantX: "XPOS",
			wantY: "YPOS",
		},
		{
			name: "positionals win over same-named keywords",
			inv: Invocation{
				Args:   []any{"XPOS", "YPOS"},
				Kwargs: map[string]any{"X": "XKW", "y": "YKW"},
			},
			wantX: "XPOS",
			wantY: "YPOS",
		},
		{
			name:  "extra positionals ignored beyond first two",
			inv:   Invocation{Args: []any{"XPOS", "YPOS", "WEIGHT"}},
			wantX: "XPOS",
			wantY: "YPOS",
		},
		{
			name: "one positional plus keyword target",
			inv: Invocation{
				Args:   []any{"XPOS"},
				Kwargs: map[string]any{"y": "YKW"},
			},
			wantX: "XPOS",
			wantY: "YKW",
		},
		{
			name:    "one positional missing keyword target",
			inv:     Invocation{Args: []any{"XPOS"}},
			wantErr: true,
			missing: "y",
		},
		{
			name: "all keywords",
			inv: Invocation{
				Kwargs: map[string]any{"X": "XKW", "y": "YKW"},
			},
			wantX: "XKW",
			wantY: "YKW",
		},
		{
			name: "keyword X missing",
			inv: Invocation{
				Kwargs: map[string]any{"y": "YKW"},
			},
			wantErr: true,
			missing: "X",
		},
		{
			name: "keyword y missing",
			inv: Invocation{
				Kwargs: map[string]any{"X": "XKW"},
			},
			wantErr: true,
			missing: "y",
		},
		{
			name:    "empty invocation",
			inv:     Invocation{},
			wantErr: true,
			missing: "X",
		},
		{
			name: "explicit nil keyword counts as present",
			inv: Invocation{
				Kwargs: map[string]any{"X": nil, "y": nil},
			},
			wantX: nil,
			wantY: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := policy.RecoverXY(tt.inv)

			if (err != nil) != tt.wantErr {
				t.Errorf("RecoverXY() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				var missingErr *errors.MissingArgumentError
				if !errors.As(err, &missingErr) {
					t.Fatalf("error type = %T, want *errors.MissingArgumentError", err)
				}
				if missingErr.Param != tt.missing {
					t.Errorf("missing param = %q, want %q", missingErr.Param, tt.missing)
				}
				return
			}
			if x != tt.wantX {
				t.Errorf("x = %v, want %v", x, tt.wantX)
			}
			if y != tt.wantY {
				t.Errorf("y = %v, want %v", y, tt.wantY)
			}
		})
	}
}

func TestRecoverXYCustomPolicy(t *testing.T) {
	// Estimators like GraphicalLasso name their fit parameters differently;
	// the policy carries those names instead of assuming "X"/"y".
	policy := ExtractionPolicy{XName: "data", YName: "target"}

	x, y, err := policy.RecoverXY(Invocation{
		Kwargs: map[string]any{"data": "D", "target": "T"},
	})
	if err != nil {
		t.Fatalf("RecoverXY() unexpected error: %v", err)
	}
	if x != "D" || y != "T" {
		t.Errorf("RecoverXY() = (%v, %v), want (D, T)", x, y)
	}
}

func TestSampleWeight(t *testing.T) {
	sigWithWeight := NewSignature(ParamX, ParamY, ParamSampleWeight)
	sigWithoutWeight := NewSignature(ParamX, ParamY)

	tests := []struct {
		name string
		sig  Signature
		inv  Invocation
		want any
	}{
		{
			name: "positional at declared index",
			sig:  sigWithWeight,
			inv:  Invocation{Args: []any{"XPOS", "YPOS", "WPOS"}},
			want: "WPOS",
		},
		{
			name: "positional wins over keyword",
			sig:  sigWithWeight,
			inv: Invocation{
				Args:   []any{"XPOS", "YPOS", "WPOS"},
				Kwargs: map[string]any{"sample_weight": "WKW"},
			},
			want: "WPOS",
		},
		{
			name: "keyword fallback",
			sig:  sigWithWeight,
			inv: Invocation{
				Args:   []any{"XPOS", "YPOS"},
				Kwargs: map[string]any{"sample_weight": "WKW"},
			},
			want: "WKW",
		},
		{
			name: "absent entirely",
			sig:  sigWithWeight,
			inv:  Invocation{Args: []any{"XPOS", "YPOS"}},
			want: nil,
		},
		{
			name: "signature does not declare sample_weight",
			sig:  sigWithoutWeight,
			inv: Invocation{
				Args:   []any{"XPOS", "YPOS", "WPOS"},
				Kwargs: map[string]any{"sample_weight": "WKW"},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleWeight(tt.sig, tt.inv); got != tt.want {
				t.Errorf("SampleWeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	sig := NewSignature(ParamX, ParamY, ParamSampleWeight)

	inputs, err := DefaultPolicy.Recover(sig, Invocation{
		Args:   []any{"XPOS"},
		Kwargs: map[string]any{"y": "YKW", "sample_weight": "WKW"},
	})
	if err != nil {
		t.Fatalf("Recover() unexpected error: %v", err)
	}
	if inputs.X != "XPOS" || inputs.Y != "YKW" || inputs.SampleWeight != "WKW" {
		t.Errorf("Recover() = %+v", inputs)
	}

	// MissingArgument from the (X, y) pair propagates.
	if _, err := DefaultPolicy.Recover(sig, Invocation{}); err == nil {
		t.Error("Recover() on an empty invocation should fail")
	}
}

func TestArgsForEvaluation(t *testing.T) {
	fitWithWeight := NewSignature(ParamX, ParamY, ParamSampleWeight)
	fitWithoutWeight := NewSignature(ParamX, ParamY)
	scoreWithWeight := NewSignature(ParamX, ParamY, ParamSampleWeight)
	scoreWithoutWeight := NewSignature(ParamX, ParamY)

	tests := []struct {
		name     string
		fitSig   Signature
		scoreSig Signature
		inv      Invocation
		want     []any
		wantErr  bool
	}{
		{
			name:     "both declare weight, positional",
			fitSig:   fitWithWeight,
			scoreSig: scoreWithWeight,
			inv:      Invocation{Args: []any{"XPOS", "YPOS", "WPOS"}},
			want:     []any{"XPOS", "YPOS", "WPOS"},
		},
		{
			name:     "both declare weight, keyword",
			fitSig:   fitWithWeight,
			scoreSig: scoreWithWeight,
			inv: Invocation{
				Args:   []any{"XPOS", "YPOS"},
				Kwargs: map[string]any{"sample_weight": "WKW"},
			},
			want: []any{"XPOS", "YPOS", "WKW"},
		},
		{
			name:     "both declare weight, call omits it",
			fitSig:   fitWithWeight,
			scoreSig: scoreWithWeight,
			inv:      Invocation{Args: []any{"XPOS", "YPOS"}},
			want:     []any{"XPOS", "YPOS", nil},
		},
		{
			name:     "only fit declares weight",
			fitSig:   fitWithWeight,
			scoreSig: scoreWithoutWeight,
			inv:      Invocation{Args: []any{"XPOS", "YPOS", "WPOS"}},
			want:     []any{"XPOS", "YPOS"},
		},
		{
			name:     "only score declares weight",
			fitSig:   fitWithoutWeight,
			scoreSig: scoreWithWeight,
			inv:      Invocation{Args: []any{"XPOS", "YPOS"}},
			want:     []any{"XPOS", "YPOS"},
		},
		{
			name:     "neither declares weight",
			fitSig:   fitWithoutWeight,
			scoreSig: scoreWithoutWeight,
			inv:      Invocation{Args: []any{"XPOS", "YPOS"}},
			want:     []any{"XPOS", "YPOS"},
		},
		{
			name:     "missing argument propagates",
			fitSig:   fitWithWeight,
			scoreSig: scoreWithWeight,
			inv:      Invocation{Args: []any{"XPOS"}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArgsForEvaluation(tt.fitSig, tt.scoreSig, tt.inv)

			if (err != nil) != tt.wantErr {
				t.Errorf("ArgsForEvaluation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPolicyFor(t *testing.T) {
	policy, err := PolicyFor(NewSignature("data", "target", ParamSampleWeight))
	if err != nil {
		t.Fatalf("PolicyFor() unexpected error: %v", err)
	}
	if policy.XName != "data" || policy.YName != "target" {
		t.Errorf("PolicyFor() = %+v, want {data target}", policy)
	}

	if _, err := PolicyFor(NewSignature(ParamX)); err == nil {
		t.Error("PolicyFor() on a one-parameter signature should fail")
	}
}
