// Package linear は自動ロギングの検証に使う線形モデルを提供する。
// LinearRegression（回帰）とLogisticRegression（二値分類）はどちらも
// 推定器レジストリに登録され、fit/score のシグネチャを宣言する。
package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/core/parallel"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/metrics"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func init() {
	estimator.MustRegister("LinearRegression", func() any { return NewLinearRegression() })
}

// LinearRegression は最小二乗法による線形回帰モデル
type LinearRegression struct {
	estimator.BaseEstimator

	weights      *mat.VecDense // 学習された係数
	intercept    float64       // 学習された切片
	nFeatures    int           // 特徴量の数
	fitIntercept bool          // 切片を学習するかどうか
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を使用
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	return lr.fit("LinearRegression.Fit", X, y, nil)
}

// FitWeighted はサンプル重み付きでモデルを学習させる。
// 各行を sqrt(w_i) でスケールしてから通常の正規方程式を解くことで、
// 重み付き最小二乗 w = (X^T W X)^(-1) * X^T W y と等価になる。
// sampleWeight が nil の場合は Fit と同じ結果になる。
func (lr *LinearRegression) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error {
	return lr.fit("LinearRegression.FitWeighted", X, y, sampleWeight)
}

func (lr *LinearRegression) fit(op string, X, y mat.Matrix, w []float64) error {
	// 入力の検証
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError(op, "y must be a column vector")
	}
	if w != nil {
		if len(w) != r {
			return errors.NewDimensionError(op, r, len(w), 0)
		}
		var wSum float64
		for i, wi := range w {
			if wi < 0 {
				return errors.NewValueError(op, fmt.Sprintf("sample weight at index %d is negative", i))
			}
			wSum += wi
		}
		if wSum <= 0 {
			return errors.NewValueError(op, "sum of sample weights must be positive")
		}
	}

	lr.nFeatures = c

	cols := c
	offset := 0
	if lr.fitIntercept {
		cols = c + 1
		offset = 1
	}

	// 計画行列を構築する。切片項は先頭列。重み付きの場合は
	// 各行とターゲットを sqrt(w_i) でスケールする。
	design := mat.NewDense(r, cols, nil)
	target := mat.NewVecDense(r, nil)

	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			scale := 1.0
			if w != nil {
				scale = math.Sqrt(w[i])
			}
			if lr.fitIntercept {
				design.Set(i, 0, scale)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, scale*X.At(i, j))
			}
			target.SetVec(i, scale*y.At(i, 0))
		}
	})

	// 正規方程式を解く
	var xt mat.Dense
	xt.CloneFrom(design.T())

	var xtx mat.Dense
	xtx.Mul(&xt, design)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return errors.NewModelError(op, "singular matrix", errors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(&xt, target)

	solution := mat.NewVecDense(cols, nil)
	solution.MulVec(&xtxInv, &xty)

	// 切片と重みを分離
	lr.intercept = 0
	if lr.fitIntercept {
		lr.intercept = solution.AtVec(0)
	}
	lr.weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.weights.SetVec(j, solution.AtVec(j+offset))
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures, c, 1)
	}

	// 予測: y = X * weights + intercept
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	return lr.ScoreWeighted(X, y, nil)
}

// ScoreWeighted はサンプル重み付きの決定係数（R²）を計算する
func (lr *LinearRegression) ScoreWeighted(X, y mat.Matrix, sampleWeight []float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	yTrue, err := columnVector("LinearRegression.Score", y)
	if err != nil {
		return 0, err
	}
	predVec, err := columnVector("LinearRegression.Score", yPred)
	if err != nil {
		return 0, err
	}

	var wVec *mat.VecDense
	if sampleWeight != nil {
		wVec = mat.NewVecDense(len(sampleWeight), sampleWeight)
	}
	return metrics.R2Weighted(yTrue, predVec, wVec)
}

// GetWeights は学習された重み（係数）を返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.weights == nil {
		return nil
	}

	weights := make([]float64, lr.weights.Len())
	for i := 0; i < lr.weights.Len(); i++ {
		weights[i] = lr.weights.AtVec(i)
	}
	return weights
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.intercept
}

// GetParams は推定器のハイパーパラメータを返す
func (lr *LinearRegression) GetParams() map[string]any {
	return map[string]any{
		"fit_intercept": lr.fitIntercept,
	}
}

// FitSignature はFitの引数レイアウトを宣言する
func (lr *LinearRegression) FitSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY, introspect.ParamSampleWeight)
}

// ScoreSignature はScoreの引数レイアウトを宣言する
func (lr *LinearRegression) ScoreSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY, introspect.ParamSampleWeight)
}

// columnVector は r×1 行列を VecDense に変換する
func columnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, errors.NewValueError(op, fmt.Sprintf("expected a column vector, got %dx%d", r, c))
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

var (
	_ estimator.Fitter                  = (*LinearRegression)(nil)
	_ estimator.WeightedFitter          = (*LinearRegression)(nil)
	_ estimator.RegressorMixin          = (*LinearRegression)(nil)
	_ estimator.WeightedScorer          = (*LinearRegression)(nil)
	_ estimator.ParamsGetter            = (*LinearRegression)(nil)
	_ introspect.SignatureDeclarer      = (*LinearRegression)(nil)
	_ introspect.ScoreSignatureDeclarer = (*LinearRegression)(nil)
)
