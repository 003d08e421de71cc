package metrics

import (
	"math"

	"github.com/fitlog-ml/fitlog/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// checkPair は2本のベクトルが空でなく同じ長さであることを検証し、長さを返す。
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差を返す。
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// MSEMatrix はn×1行列として渡された入力のMSEを返す。
// 2列以上の行列は受け付けない。
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rT, cT := yTrue.Dims()
	rP, cP := yPred.Dims()
	if rT == 0 || cT == 0 {
		return 0, errors.NewValueError("MSEMatrix", "empty matrix")
	}
	if rT != rP || cT != cP {
		return 0, errors.NewDimensionError("MSEMatrix", rT, rP, 0)
	}
	if cT != 1 {
		return 0, errors.NewValueError("MSEMatrix", "must be a column vector (n×1 matrix)")
	}

	return MSE(
		mat.NewVecDense(rT, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rP, mat.Col(nil, 0, yPred)),
	)
}

// RMSE はMSEの平方根を返す。
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差を返す。
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数 R² = 1 - RSS/TSS を返す。
// yTrueに分散がない場合、R²は定義できないためエラーになる。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yBar float64
	for i := 0; i < n; i++ {
		yBar += yTrue.AtVec(i)
	}
	yBar /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		dMean := yt - yBar
		dPred := yt - yPred.AtVec(i)
		tss += dMean * dMean
		rss += dPred * dPred
	}
	if tss == 0 {
		return 0, errors.Newf("R2Score: yTrue has zero variance, R² is undefined")
	}
	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を百分率で返す。
// yTrueが0の要素はゼロ除算になるため平均から除外する。
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	counted := 0
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		if yt == 0 {
			continue
		}
		sum += math.Abs(yt-yPred.AtVec(i)) / math.Abs(yt)
		counted++
	}
	if counted == 0 {
		return 0, errors.Newf("MAPE: every yTrue value is zero, MAPE is undefined")
	}
	return sum / float64(counted) * 100, nil
}

// ExplainedVarianceScore は説明分散スコア 1 - Var(yTrue-yPred) / Var(yTrue) を返す。
// 残差が一定（予測が定数だけずれている）の場合は1になる点がR²と異なる。
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yBar, dBar float64
	for i := 0; i < n; i++ {
		yBar += yTrue.AtVec(i)
		dBar += yTrue.AtVec(i) - yPred.AtVec(i)
	}
	yBar /= float64(n)
	dBar /= float64(n)

	var varY, varD float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		d := yt - yPred.AtVec(i)
		varY += (yt - yBar) * (yt - yBar)
		varD += (d - dBar) * (d - dBar)
	}
	if varY == 0 {
		return 0, errors.Newf("ExplainedVarianceScore: yTrue has zero variance")
	}
	return 1 - varD/varY, nil
}

// validateWeighted は重み付き指標の入力を検証し、重みの合計を返す。
// sampleWeightがnilの場合は全サンプルを重み1として扱う。
func validateWeighted(op string, yTrue, yPred, sampleWeight *mat.VecDense) (float64, error) {
	n, err := checkPair(op, yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if sampleWeight == nil {
		return float64(n), nil
	}
	if sampleWeight.Len() != n {
		return 0, errors.NewDimensionError(op, n, sampleWeight.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		w := sampleWeight.AtVec(i)
		if w < 0 {
			return 0, errors.NewValueError(op, "sample weights must be non-negative")
		}
		sum += w
	}
	if sum <= 0 {
		return 0, errors.NewValueError(op, "sum of sample weights must be positive")
	}
	return sum, nil
}

// weightAt はsampleWeightのi番目の重みを返す（nilなら1.0）
func weightAt(sampleWeight *mat.VecDense, i int) float64 {
	if sampleWeight == nil {
		return 1.0
	}
	return sampleWeight.AtVec(i)
}

// MSEWeighted はサンプル重み付きの平均二乗誤差を計算する。
// sampleWeightがnilの場合はMSEと同じ結果になる。
func MSEWeighted(yTrue, yPred, sampleWeight *mat.VecDense) (float64, error) {
	wSum, err := validateWeighted("MSEWeighted", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	// MSE_w = Σ w_i*(yTrue_i - yPred_i)² / Σ w_i
	var sum float64
	for i := 0; i < yTrue.Len(); i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += weightAt(sampleWeight, i) * diff * diff
	}

	return sum / wSum, nil
}

// RMSEWeighted はサンプル重み付きの平方根平均二乗誤差を計算する。
// 重み付きMSEの平方根として定義される。
func RMSEWeighted(yTrue, yPred, sampleWeight *mat.VecDense) (float64, error) {
	mse, err := MSEWeighted(yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAEWeighted はサンプル重み付きの平均絶対誤差を計算する。
func MAEWeighted(yTrue, yPred, sampleWeight *mat.VecDense) (float64, error) {
	wSum, err := validateWeighted("MAEWeighted", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	// MAE_w = Σ w_i*|yTrue_i - yPred_i| / Σ w_i
	var sum float64
	for i := 0; i < yTrue.Len(); i++ {
		sum += weightAt(sampleWeight, i) * math.Abs(yTrue.AtVec(i)-yPred.AtVec(i))
	}

	return sum / wSum, nil
}

// R2Weighted はサンプル重み付きの決定係数（R²）を計算する。
// 重み付き平均まわりの重み付き全変動と残差変動から求める。
func R2Weighted(yTrue, yPred, sampleWeight *mat.VecDense) (float64, error) {
	wSum, err := validateWeighted("R2Weighted", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	n := yTrue.Len()

	// 重み付き平均
	var yBar float64
	for i := 0; i < n; i++ {
		yBar += weightAt(sampleWeight, i) * yTrue.AtVec(i)
	}
	yBar /= wSum

	// 重み付きTSSとRSS
	var tss, rss float64
	for i := 0; i < n; i++ {
		w := weightAt(sampleWeight, i)
		yt := yTrue.AtVec(i)
		dMean := yt - yBar
		dPred := yt - yPred.AtVec(i)
		tss += w * dMean * dMean
		rss += w * dPred * dPred
	}
	if tss == 0 {
		return 0, errors.Newf("R2Weighted: yTrue has zero variance, R² is undefined")
	}
	return 1 - rss/tss, nil
}
