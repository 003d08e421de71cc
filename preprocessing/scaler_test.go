package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// TestStandardScaler_FitTransform tests standardization to zero mean and unit variance
func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	mean := scaler.Mean()
	if math.Abs(mean[0]-2.5) > 1e-12 || math.Abs(mean[1]-25.0) > 1e-12 {
		t.Errorf("Expected means [2.5 25], got %v", mean)
	}

	// 各列の平均が0、標準偏差が1になっている
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		var sum, sumSq float64
		for i := 0; i < r; i++ {
			sum += scaled.At(i, j)
		}
		colMean := sum / float64(r)
		if math.Abs(colMean) > 1e-12 {
			t.Errorf("Column %d mean should be 0, got %v", j, colMean)
		}
		for i := 0; i < r; i++ {
			diff := scaled.At(i, j) - colMean
			sumSq += diff * diff
		}
		std := math.Sqrt(sumSq / float64(r))
		if math.Abs(std-1.0) > 1e-12 {
			t.Errorf("Column %d std should be 1, got %v", j, std)
		}
	}
}

// TestStandardScaler_InverseRoundTrip tests Transform followed by InverseTransform
func TestStandardScaler_InverseRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.5, -2.0,
		3.0, 4.5,
		-1.0, 0.5,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}

	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-12 {
				t.Errorf("Round trip mismatch at (%d, %d): %v vs %v", i, j, restored.At(i, j), X.At(i, j))
			}
		}
	}
}

// TestStandardScaler_Options tests with_mean=false and with_std=false
func TestStandardScaler_Options(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})

	// 平均を引かない
	noMean := NewStandardScaler(false, true)
	scaled, err := noMean.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}
	// mean=0のままなのでstdはsqrt((4+16)/2)=sqrt(10)
	want := 2.0 / math.Sqrt(10)
	if math.Abs(scaled.At(0, 0)-want) > 1e-12 {
		t.Errorf("Expected %v without centering, got %v", want, scaled.At(0, 0))
	}

	// 標準偏差で割らない
	noStd := NewStandardScaler(true, false)
	scaled, err = noStd.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}
	if math.Abs(scaled.At(0, 0)-(-1.0)) > 1e-12 || math.Abs(scaled.At(1, 0)-1.0) > 1e-12 {
		t.Errorf("Expected centered values [-1 1], got [%v %v]", scaled.At(0, 0), scaled.At(1, 0))
	}

	params := NewStandardScaler(false, true).GetParams()
	if params["with_mean"] != false || params["with_std"] != true {
		t.Errorf("Unexpected params: %v", params)
	}
}

// TestStandardScaler_ConstantFeature tests the zero-variance guard
func TestStandardScaler_ConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	// 定数特徴量はスケール1扱いなので、中心化のみで全て0になる
	for i := 0; i < 3; i++ {
		if scaled.At(i, 0) != 0 {
			t.Errorf("Constant feature should scale to 0, got %v", scaled.At(i, 0))
		}
	}
	if scaler.Scale()[0] != 1.0 {
		t.Errorf("Constant feature scale should be 1, got %v", scaler.Scale()[0])
	}
}

// TestMinMaxScaler_Transform tests scaling to the default [0,1] range
func TestMinMaxScaler_Transform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 100,
		5, 150,
		10, 200,
	})

	scaler := NewMinMaxScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}

	wantMin := scaler.DataMin()
	wantMax := scaler.DataMax()
	if wantMin[0] != 0 || wantMin[1] != 100 || wantMax[0] != 10 || wantMax[1] != 200 {
		t.Errorf("Unexpected data range: min %v max %v", wantMin, wantMax)
	}

	expected := [][]float64{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
	}
	for i := range expected {
		for j := range expected[i] {
			if math.Abs(scaled.At(i, j)-expected[i][j]) > 1e-12 {
				t.Errorf("Scaled value at (%d, %d): expected %v, got %v", i, j, expected[i][j], scaled.At(i, j))
			}
		}
	}
}

// TestMinMaxScaler_CustomRange tests a non-default feature range
func TestMinMaxScaler_CustomRange(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 10})

	scaler := NewMinMaxScaler([2]float64{-1, 1})
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("Failed to fit-transform: %v", err)
	}
	if scaled.At(0, 0) != -1 || scaled.At(1, 0) != 1 {
		t.Errorf("Expected range endpoints [-1 1], got [%v %v]", scaled.At(0, 0), scaled.At(1, 0))
	}

	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("Failed to inverse-transform: %v", err)
	}
	if math.Abs(restored.At(0, 0)) > 1e-12 || math.Abs(restored.At(1, 0)-10) > 1e-12 {
		t.Errorf("Round trip mismatch: [%v %v]", restored.At(0, 0), restored.At(1, 0))
	}
}

// TestScaler_Errors tests validation and not-fitted errors
func TestScaler_Errors(t *testing.T) {
	empty := &mat.Dense{}
	if err := NewStandardScalerDefault().Fit(empty, nil); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}
	if err := NewMinMaxScalerDefault().Fit(empty, nil); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}

	var notFitted *errors.NotFittedError
	X := mat.NewDense(2, 1, []float64{1, 2})
	if _, err := NewStandardScalerDefault().Transform(X); !errors.As(err, &notFitted) {
		t.Errorf("Expected NotFittedError, got %v", err)
	}
	if _, err := NewMinMaxScalerDefault().InverseTransform(X); !errors.As(err, &notFitted) {
		t.Errorf("Expected NotFittedError, got %v", err)
	}

	// 特徴量次元の不一致
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), nil); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	var dimErr *errors.DimensionError
	if _, err := scaler.Transform(X); !errors.As(err, &dimErr) {
		t.Errorf("Expected DimensionError, got %v", err)
	}
}

// TestScaler_Registered tests load-time registration of both scalers
func TestScaler_Registered(t *testing.T) {
	for _, name := range []string{"StandardScaler", "MinMaxScaler"} {
		entry, ok := estimator.Get(name)
		if !ok {
			t.Fatalf("%s should be registered", name)
		}
		if len(entry.Kinds) != 1 || entry.Kinds[0] != estimator.KindTransformer {
			t.Errorf("%s: expected kinds [transformer], got %v", name, entry.Kinds)
		}
	}

	// 変換器のみのフィルタで両方が並ぶ
	transformers, err := estimator.List(estimator.KindTransformer)
	if err != nil {
		t.Fatalf("Failed to list transformers: %v", err)
	}
	var names []string
	for _, e := range transformers {
		names = append(names, e.Name)
	}
	if len(names) < 2 {
		t.Errorf("Expected at least both scalers in transformer list, got %v", names)
	}
}
