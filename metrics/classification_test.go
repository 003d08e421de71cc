package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracyScore(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		weight    *mat.VecDense
		normalize bool
		want      float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(4, []float64{0, 1, 1, 0}),
			yPred:     mat.NewVecDense(4, []float64{0, 1, 1, 0}),
			normalize: true,
			want:      1.0,
		},
		{
			name:      "four of five correct",
			yTrue:     mat.NewVecDense(5, []float64{0, 1, 1, 0, 1}),
			yPred:     mat.NewVecDense(5, []float64{0, 1, 0, 0, 1}),
			normalize: true,
			want:      0.8,
		},
		{
			name:      "unnormalized counts correct samples",
			yTrue:     mat.NewVecDense(5, []float64{0, 1, 1, 0, 1}),
			yPred:     mat.NewVecDense(5, []float64{0, 1, 0, 0, 1}),
			normalize: false,
			want:      4.0,
		},
		{
			name:      "weighted fraction",
			yTrue:     mat.NewVecDense(5, []float64{0, 1, 1, 0, 1}),
			yPred:     mat.NewVecDense(5, []float64{0, 1, 0, 0, 1}),
			weight:    mat.NewVecDense(5, []float64{1, 1, 2, 1, 1}),
			normalize: true,
			want:      4.0 / 6.0,
		},
		{
			name:      "weighted counts",
			yTrue:     mat.NewVecDense(5, []float64{0, 1, 1, 0, 1}),
			yPred:     mat.NewVecDense(5, []float64{0, 1, 0, 0, 1}),
			weight:    mat.NewVecDense(5, []float64{1, 1, 2, 1, 1}),
			normalize: false,
			want:      4.0,
		},
		{
			name:      "all wrong",
			yTrue:     mat.NewVecDense(3, []float64{1, 1, 1}),
			yPred:     mat.NewVecDense(3, []float64{0, 0, 0}),
			normalize: true,
			want:      0.0,
		},
		{
			name:      "dimension mismatch",
			yTrue:     mat.NewVecDense(3, []float64{1, 1, 1}),
			yPred:     mat.NewVecDense(2, []float64{1, 1}),
			normalize: true,
			wantErr:   true,
		},
		{
			name:      "empty vectors",
			yTrue:     &mat.VecDense{},
			yPred:     &mat.VecDense{},
			normalize: true,
			wantErr:   true,
		},
		{
			name:      "negative weight",
			yTrue:     mat.NewVecDense(2, []float64{0, 1}),
			yPred:     mat.NewVecDense(2, []float64{0, 1}),
			weight:    mat.NewVecDense(2, []float64{1, -1}),
			normalize: true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AccuracyScore(tt.yTrue, tt.yPred, tt.weight, tt.normalize)

			if (err != nil) != tt.wantErr {
				t.Errorf("AccuracyScore() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("AccuracyScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecisionScore(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 1, 1, 0, 1})
	yPred := mat.NewVecDense(5, []float64{0, 1, 0, 0, 1})
	weight := mat.NewVecDense(5, []float64{1, 1, 2, 1, 1})

	tests := []struct {
		name    string
		average Average
		weight  *mat.VecDense
		want    float64
		wantErr bool
	}{
		// label 0: tp=2 predicted=3, label 1: tp=2 predicted=2; supports 2 and 3
		{name: "weighted", average: AverageWeighted, want: (2.0*(2.0/3.0) + 3.0*1.0) / 5.0},
		{name: "macro", average: AverageMacro, want: (2.0/3.0 + 1.0) / 2.0},
		{name: "micro", average: AverageMicro, want: 4.0 / 5.0},
		// with weights: label 0: tp=2 predicted=4, label 1: tp=2 predicted=2; supports 2 and 4
		{name: "weighted with sample weights", average: AverageWeighted, weight: weight, want: (2.0*0.5 + 4.0*1.0) / 6.0},
		{name: "unknown average", average: Average("median"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrecisionScore(yTrue, yPred, tt.average, tt.weight)

			if (err != nil) != tt.wantErr {
				t.Errorf("PrecisionScore() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("PrecisionScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecallScore(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 1, 1, 0, 1})
	yPred := mat.NewVecDense(5, []float64{0, 1, 0, 0, 1})

	// label 0: tp=2 actual=2, label 1: tp=2 actual=3
	want := (2.0*1.0 + 3.0*(2.0/3.0)) / 5.0
	got, err := RecallScore(yTrue, yPred, AverageWeighted, nil)
	if err != nil {
		t.Fatalf("RecallScore() unexpected error: %v", err)
	}
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("RecallScore() = %v, want %v", got, want)
	}

	// A label never predicted: its recall is 0, not an error.
	yPredNone := mat.NewVecDense(5, []float64{0, 0, 0, 0, 0})
	got, err = RecallScore(yTrue, yPredNone, AverageWeighted, nil)
	if err != nil {
		t.Fatalf("RecallScore() unexpected error: %v", err)
	}
	// label 0: recall 1 support 2; label 1: recall 0 support 3
	want = (2.0*1.0 + 3.0*0.0) / 5.0
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("RecallScore() with unpredicted label = %v, want %v", got, want)
	}
}

func TestF1Score(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 1, 1, 0, 1})
	yPred := mat.NewVecDense(5, []float64{0, 1, 0, 0, 1})

	// f1 is 0.8 for both labels here, so every average agrees
	for _, average := range []Average{AverageWeighted, AverageMacro, AverageMicro} {
		got, err := F1Score(yTrue, yPred, average, nil)
		if err != nil {
			t.Fatalf("F1Score(%s) unexpected error: %v", average, err)
		}
		if math.Abs(got-0.8) > 1e-10 {
			t.Errorf("F1Score(%s) = %v, want 0.8", average, got)
		}
	}
}

func TestF1ScoreZeroDivision(t *testing.T) {
	// Degenerate single-class target with nothing predicted correctly:
	// every per-label f1 is ill-defined or zero, so the score folds to 0.
	yTrue := mat.NewVecDense(3, []float64{1, 1, 1})
	yPred := mat.NewVecDense(3, []float64{0, 0, 0})

	got, err := F1Score(yTrue, yPred, AverageWeighted, nil)
	if err != nil {
		t.Fatalf("F1Score() unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("F1Score() = %v, want 0", got)
	}
}
