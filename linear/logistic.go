package linear

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/metrics"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func init() {
	estimator.MustRegister("LogisticRegression", func() any { return NewLogisticRegression() })
}

// LogisticRegression は勾配降下法による二値分類モデル
type LogisticRegression struct {
	estimator.BaseEstimator

	// ハイパーパラメータ
	c            float64 // 正則化強度の逆数（L2）
	fitIntercept bool    // 切片を学習するかどうか
	maxIter      int     // 最大反復回数
	tol          float64 // 収束判定の許容誤差

	// 学習されたパラメータ
	weights   []float64 // 係数
	intercept float64   // 切片
	classes   []int     // 学習時に観測したクラスラベル（昇順）
	nFeatures int       // 特徴量の数
	nIter     int       // 実際の反復回数
}

// LogisticOption はLogisticRegressionを設定する関数
type LogisticOption func(*LogisticRegression)

// WithLogisticC は正則化強度の逆数を設定する
func WithLogisticC(c float64) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithLogisticFitIntercept は切片を学習するかどうかを設定する
func WithLogisticFitIntercept(fit bool) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLogisticMaxIter は最大反復回数を設定する
func WithLogisticMaxIter(maxIter int) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLogisticTol は収束判定の許容誤差を設定する
func WithLogisticTol(tol float64) LogisticOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// NewLogisticRegression は新しい二値分類モデルを作成する
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	lr := &LogisticRegression{
		c:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	return lr.fit("LogisticRegression.Fit", X, y, nil)
}

// FitWeighted はサンプル重み付きでモデルを学習させる。
// 各サンプルの勾配への寄与が w_i でスケールされる。
// sampleWeight が nil の場合は Fit と同じ結果になる。
func (lr *LogisticRegression) FitWeighted(X, y mat.Matrix, sampleWeight []float64) error {
	return lr.fit("LogisticRegression.FitWeighted", X, y, sampleWeight)
}

func (lr *LogisticRegression) fit(op string, X, y mat.Matrix, w []float64) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError(op, "y must be a column vector")
	}

	wSum := float64(nSamples)
	if w != nil {
		if len(w) != nSamples {
			return errors.NewDimensionError(op, nSamples, len(w), 0)
		}
		wSum = 0
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

	// クラスラベルを抽出する。二値分類のみ対応。
	classSet := make(map[int]struct{})
	for i := 0; i < nSamples; i++ {
		classSet[int(y.At(i, 0))] = struct{}{}
	}
	classes := make([]int, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	if len(classes) != 2 {
		return errors.NewValueError(op, fmt.Sprintf("expected exactly 2 classes, got %d", len(classes)))
	}

	lr.classes = classes
	lr.nFeatures = nFeatures

	// classes[1] を正例とする 0/1 ラベル
	yBinary := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == classes[1] {
			yBinary[i] = 1.0
		}
	}

	// 勾配降下法。初期値ゼロで凸問題なので決定的に収束する。
	weights := make([]float64, nFeatures)
	intercept := 0.0

	const baseLearningRate = 1.0
	lambda := 1.0 / lr.c

	for iter := 0; iter < lr.maxIter; iter++ {
		gradWeights := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - yBinary[i]
			if w != nil {
				residual *= w[i]
			}
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		// 重みの総和で正規化（等重みなら1/nと同じ）
		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/wSum + lambda*weights[j]
		}
		gradIntercept /= wSum

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))

		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			intercept -= learningRate * gradIntercept
		}

		lr.nIter = iter + 1

		// 収束判定
		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			break
		}
	}

	// 学習率過大などで発散した場合は型付きエラーで報告する
	coeffs := append([]float64{intercept}, weights...)
	if err := errors.CheckNumericalStability(op, coeffs, lr.nIter); err != nil {
		return err
	}

	lr.weights = weights
	lr.intercept = intercept
	lr.SetFitted()
	return nil
}

// decision は1サンプルの線形スコアを返す
func (lr *LogisticRegression) decision(X mat.Matrix, i int) float64 {
	z := lr.intercept
	for j := 0; j < lr.nFeatures; j++ {
		z += X.At(i, j) * lr.weights[j]
	}
	return z
}

// Predict は各サンプルの予測クラスラベルを返す
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "Predict")
	}

	nSamples, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.Predict", lr.nFeatures, c, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if sigmoid(lr.decision(X, i)) >= 0.5 {
			predictions.Set(i, 0, float64(lr.classes[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes[0]))
		}
	}
	return predictions, nil
}

// PredictProba は各クラスの所属確率を返す（n×2 行列、列順はClasses()に対応）
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures, c, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := sigmoid(lr.decision(X, i))
		probas.Set(i, 0, 1.0-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Classes は学習時に観測したクラスラベルを昇順で返す
func (lr *LogisticRegression) Classes() []int {
	if lr.classes == nil {
		return nil
	}
	return append([]int(nil), lr.classes...)
}

// Score は正解率（accuracy）を計算する
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	return lr.ScoreWeighted(X, y, nil)
}

// ScoreWeighted はサンプル重み付きの正解率を計算する
func (lr *LogisticRegression) ScoreWeighted(X, y mat.Matrix, sampleWeight []float64) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LogisticRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	yTrue, err := columnVector("LogisticRegression.Score", y)
	if err != nil {
		return 0, err
	}
	predVec, err := columnVector("LogisticRegression.Score", yPred)
	if err != nil {
		return 0, err
	}

	var wVec *mat.VecDense
	if sampleWeight != nil {
		wVec = mat.NewVecDense(len(sampleWeight), sampleWeight)
	}
	return metrics.AccuracyScore(yTrue, predVec, wVec, true)
}

// GetParams は推定器のハイパーパラメータを返す
func (lr *LogisticRegression) GetParams() map[string]any {
	return map[string]any{
		"C":             lr.c,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// NIter は学習に要した反復回数を返す
func (lr *LogisticRegression) NIter() int {
	return lr.nIter
}

// FitSignature はFitの引数レイアウトを宣言する
func (lr *LogisticRegression) FitSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY, introspect.ParamSampleWeight)
}

// ScoreSignature はScoreの引数レイアウトを宣言する
func (lr *LogisticRegression) ScoreSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY, introspect.ParamSampleWeight)
}

// sigmoid はシグモイド関数を計算する。指数は飽和させてオーバーフローを防ぐ。
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}

var (
	_ estimator.Fitter                  = (*LogisticRegression)(nil)
	_ estimator.WeightedFitter          = (*LogisticRegression)(nil)
	_ estimator.ClassifierMixin         = (*LogisticRegression)(nil)
	_ estimator.WeightedScorer          = (*LogisticRegression)(nil)
	_ estimator.ParamsGetter            = (*LogisticRegression)(nil)
	_ introspect.SignatureDeclarer      = (*LogisticRegression)(nil)
	_ introspect.ScoreSignatureDeclarer = (*LogisticRegression)(nil)
)
