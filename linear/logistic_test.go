package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// separableData は線形分離可能な二値分類データを返す
func separableData() (*mat.Dense, *mat.Dense) {
	// クラス0は(1,1)付近、クラス1は(3,3)付近
	X := mat.NewDense(6, 2, []float64{
		0.5, 0.5,
		1.0, 1.5,
		1.5, 1.0,
		3.0, 2.5,
		2.5, 3.0,
		3.5, 3.5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})
	return X, y
}

// TestLogisticRegression_FitPredict_Binary tests binary classification
func TestLogisticRegression_FitPredict_Binary(t *testing.T) {
	X, y := separableData()

	lr := NewLogisticRegression(
		WithLogisticMaxIter(1000),
		WithLogisticTol(1e-6),
	)
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	predictions, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := 0; i < 6; i++ {
		if predictions.At(i, 0) != y.At(i, 0) {
			t.Errorf("Sample %d: expected %v, got %v", i, y.At(i, 0), predictions.At(i, 0))
		}
	}

	// 新しいデータ点
	XTest := mat.NewDense(2, 2, []float64{
		1.0, 1.0,
		3.0, 3.0,
	})
	testPreds, err := lr.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}
	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (1,1) should be class 0, got %v", testPreds.At(0, 0))
	}
	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3,3) should be class 1, got %v", testPreds.At(1, 0))
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Failed to score: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Expected training accuracy 1.0, got %v", score)
	}
}

// TestLogisticRegression_PredictProba tests probability predictions
func TestLogisticRegression_PredictProba(t *testing.T) {
	X, y := separableData()

	lr := NewLogisticRegression(WithLogisticMaxIter(500))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	probas, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}

	rows, cols := probas.Dims()
	if rows != 6 || cols != 2 {
		t.Fatalf("Expected probas shape (6, 2), got (%d, %d)", rows, cols)
	}

	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			p := probas.At(i, j)
			if p < 0 || p > 1 {
				t.Errorf("Invalid probability at (%d, %d): %v", i, j, p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("Probabilities for sample %d don't sum to 1: %v", i, sum)
		}
	}

	// クラス1の点はクラス1の確率が高い
	if probas.At(5, 1) <= probas.At(5, 0) {
		t.Errorf("Sample 5 should favor class 1: got probs (%v, %v)", probas.At(5, 0), probas.At(5, 1))
	}
}

// TestLogisticRegression_ArbitraryLabels tests non-0/1 class labels
func TestLogisticRegression_ArbitraryLabels(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{-2, -1, 1, 2})
	y := mat.NewDense(4, 1, []float64{3, 3, 7, 7})

	lr := NewLogisticRegression(WithLogisticMaxIter(500))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	classes := lr.Classes()
	if len(classes) != 2 || classes[0] != 3 || classes[1] != 7 {
		t.Errorf("Expected classes [3 7], got %v", classes)
	}

	predictions, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := 0; i < 4; i++ {
		pred := predictions.At(i, 0)
		if pred != 3 && pred != 7 {
			t.Errorf("Prediction %d should be one of the training labels, got %v", i, pred)
		}
	}
}

// TestLogisticRegression_FitWeighted tests the weighted fit path
func TestLogisticRegression_FitWeighted(t *testing.T) {
	X, y := separableData()

	// nil重みはFitと完全に同じ解（初期値ゼロで決定的）
	plain := NewLogisticRegression(WithLogisticMaxIter(200))
	if err := plain.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	nilWeighted := NewLogisticRegression(WithLogisticMaxIter(200))
	if err := nilWeighted.FitWeighted(X, y, nil); err != nil {
		t.Fatalf("Failed to fit with nil weights: %v", err)
	}
	for j := range plain.weights {
		if plain.weights[j] != nilWeighted.weights[j] {
			t.Errorf("Weight %d differs between Fit and nil-weighted FitWeighted: %v vs %v",
				j, plain.weights[j], nilWeighted.weights[j])
		}
	}

	// 等重みも同じ解に収束する
	equal := NewLogisticRegression(WithLogisticMaxIter(200))
	if err := equal.FitWeighted(X, y, []float64{1, 1, 1, 1, 1, 1}); err != nil {
		t.Fatalf("Failed to fit with equal weights: %v", err)
	}
	for j := range plain.weights {
		if math.Abs(plain.weights[j]-equal.weights[j]) > 1e-12 {
			t.Errorf("Weight %d differs between Fit and equal-weighted FitWeighted: %v vs %v",
				j, plain.weights[j], equal.weights[j])
		}
	}

	// 重み付きの正解率
	score, err := equal.ScoreWeighted(X, y, []float64{2, 2, 2, 1, 1, 1})
	if err != nil {
		t.Fatalf("Failed to score weighted: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Expected weighted accuracy 1.0, got %v", score)
	}
}

// TestLogisticRegression_Validation tests input validation errors
func TestLogisticRegression_Validation(t *testing.T) {
	var valErr *errors.ValueError
	var dimErr *errors.DimensionError

	// 空データ
	empty := &mat.Dense{}
	if err := NewLogisticRegression().Fit(empty, empty); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}

	// クラスが1つしかない
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	yOne := mat.NewDense(3, 1, []float64{1, 1, 1})
	if err := NewLogisticRegression().Fit(X, yOne); !errors.As(err, &valErr) {
		t.Errorf("Expected ValueError for single class, got %v", err)
	}

	// クラスが3つある
	yThree := mat.NewDense(3, 1, []float64{0, 1, 2})
	if err := NewLogisticRegression().Fit(X, yThree); !errors.As(err, &valErr) {
		t.Errorf("Expected ValueError for 3 classes, got %v", err)
	}

	// 重みの長さ不一致
	y := mat.NewDense(3, 1, []float64{0, 1, 0})
	if err := NewLogisticRegression().FitWeighted(X, y, []float64{1}); !errors.As(err, &dimErr) {
		t.Errorf("Expected DimensionError for weight length mismatch, got %v", err)
	}

	// 未学習状態での予測
	var notFitted *errors.NotFittedError
	if _, err := NewLogisticRegression().Predict(X); !errors.As(err, &notFitted) {
		t.Errorf("Expected NotFittedError, got %v", err)
	}
	if _, err := NewLogisticRegression().PredictProba(X); !errors.As(err, &notFitted) {
		t.Errorf("Expected NotFittedError, got %v", err)
	}
}

// TestLogisticRegression_Registered tests load-time registration and kind derivation
func TestLogisticRegression_Registered(t *testing.T) {
	entry, ok := estimator.Get("LogisticRegression")
	if !ok {
		t.Fatal("LogisticRegression should be registered")
	}

	// 分類器は構造的に回帰器のメソッド集合も満たすが、kindは分類器のみ
	if len(entry.Kinds) != 1 || entry.Kinds[0] != estimator.KindClassifier {
		t.Errorf("Expected kinds [classifier], got %v", entry.Kinds)
	}

	params := NewLogisticRegression().GetParams()
	for _, key := range []string{"C", "fit_intercept", "max_iter", "tol"} {
		if _, ok := params[key]; !ok {
			t.Errorf("Expected hyperparameter %q in GetParams", key)
		}
	}
}
