// Package cluster は自動ロギングの検証に使うクラスタリングモデルを提供する。
package cluster

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/core/parallel"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func init() {
	estimator.MustRegister("KMeans", func() any { return NewKMeans() })
}

// assignThreshold is the row count above which the assignment step runs
// in parallel.
const assignThreshold = 1000

// KMeans はLloyd法によるK-meansクラスタリング
type KMeans struct {
	estimator.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数
	maxIter     int     // 最大イテレーション数
	tol         float64 // 中心移動量による収束判定の許容誤差
	nInit       int     // 異なる初期化での実行回数
	randomState int64   // 乱数シード（負の値で時刻シード）

	// 学習パラメータ
	centers [][]float64 // クラスタ中心（nClusters x nFeatures）
	labels  []int       // 学習データの各サンプルのクラスタラベル
	inertia float64     // クラスタ内平方和誤差
	nIter   int         // 実行されたイテレーション数

	nFeatures int
	rng       *rand.Rand
}

// KMeansOption はKMeansの設定オプション
type KMeansOption func(*KMeans)

// WithKMeansNClusters はクラスタ数を設定
func WithKMeansNClusters(n int) KMeansOption {
	return func(km *KMeans) {
		km.nClusters = n
	}
}

// WithKMeansMaxIter は最大イテレーション数を設定
func WithKMeansMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithKMeansTol は収束判定の許容誤差を設定
func WithKMeansTol(tol float64) KMeansOption {
	return func(km *KMeans) {
		km.tol = tol
	}
}

// WithKMeansRandomState は乱数シードを設定
func WithKMeansRandomState(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.randomState = seed
	}
}

// NewKMeans は新しいK-meansモデルを作成
func NewKMeans(opts ...KMeansOption) *KMeans {
	km := &KMeans{
		nClusters:   8,
		maxIter:     100,
		tol:         1e-4,
		nInit:       3,
		randomState: -1,
	}
	for _, opt := range opts {
		opt(km)
	}

	if km.randomState >= 0 {
		km.rng = rand.New(rand.NewSource(km.randomState))
	} else {
		km.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return km
}

// Fit はモデルを訓練データで学習させる。
// yはAPIの互換性のためにあり、学習では使用しない。
func (km *KMeans) Fit(X, y mat.Matrix) error {
	const op = "KMeans.Fit"

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if rows < km.nClusters {
		return errors.NewValueError(op,
			errors.Newf("n_samples=%d should be >= n_clusters=%d", rows, km.nClusters).Error())
	}

	km.nFeatures = cols

	// 複数回実行して慣性が最小の結果を選択
	bestInertia := math.Inf(1)
	var bestCenters [][]float64
	var bestLabels []int
	var bestNIter int

	for run := 0; run < km.nInit; run++ {
		centers, labels, inertia, nIter := km.lloydRun(X)
		if inertia < bestInertia {
			bestInertia = inertia
			bestCenters = centers
			bestLabels = labels
			bestNIter = nIter
		}
	}

	km.centers = bestCenters
	km.labels = bestLabels
	km.inertia = bestInertia
	km.nIter = bestNIter

	km.SetFitted()
	return nil
}

// lloydRun はk-means++初期化からLloyd法を1回実行する
func (km *KMeans) lloydRun(X mat.Matrix) ([][]float64, []int, float64, int) {
	rows, cols := X.Dims()

	centers := km.initKMeansPlusPlus(X)
	labels := make([]int, rows)
	var finalIter int

	for iter := 0; iter < km.maxIter; iter++ {
		finalIter = iter + 1

		// 割り当てステップ。各行は独立なので並列化できる。
		assign := centers
		parallel.ParallelizeWithThreshold(rows, assignThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				labels[i] = nearestCenter(mat.Row(nil, i, X), assign)
			}
		})

		// 更新ステップ
		newCenters := make([][]float64, km.nClusters)
		counts := make([]int, km.nClusters)
		for c := range newCenters {
			newCenters[c] = make([]float64, cols)
		}
		for i := 0; i < rows; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < cols; j++ {
				newCenters[c][j] += X.At(i, j)
			}
		}
		for c := range newCenters {
			if counts[c] == 0 {
				// 空クラスタはランダムなサンプルで再初期化
				copy(newCenters[c], mat.Row(nil, km.rng.Intn(rows), X))
				continue
			}
			for j := 0; j < cols; j++ {
				newCenters[c][j] /= float64(counts[c])
			}
		}

		// 中心の移動量で収束判定
		var shift float64
		for c := range centers {
			d := euclideanDistance(centers[c], newCenters[c])
			shift += d * d
		}
		centers = newCenters

		if shift <= km.tol {
			break
		}
	}

	parallel.ParallelizeWithThreshold(rows, assignThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			labels[i] = nearestCenter(mat.Row(nil, i, X), centers)
		}
	})
	return centers, labels, km.computeInertia(X, centers), finalIter
}

// initKMeansPlusPlus はk-means++初期化を実行
func (km *KMeans) initKMeansPlusPlus(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	centers := make([][]float64, km.nClusters)

	centers[0] = make([]float64, cols)
	copy(centers[0], mat.Row(nil, km.rng.Intn(rows), X))

	for c := 1; c < km.nClusters; c++ {
		distances := make([]float64, rows)
		totalDistance := 0.0

		// 各サンプルから最近傍の既存中心までの距離の二乗
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			minDist := math.Inf(1)
			for j := 0; j < c; j++ {
				if dist := euclideanDistance(sample, centers[j]); dist < minDist {
					minDist = dist
				}
			}
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		// 距離の二乗に比例した確率でサンプルを選択
		target := km.rng.Float64() * totalDistance
		cumSum := 0.0
		selectedIdx := 0
		for i := 0; i < rows; i++ {
			cumSum += distances[i]
			if cumSum >= target {
				selectedIdx = i
				break
			}
		}

		centers[c] = make([]float64, cols)
		copy(centers[c], mat.Row(nil, selectedIdx, X))
	}

	return centers
}

// PredictCluster は各サンプルを最近傍クラスタに割り当てる
func (km *KMeans) PredictCluster(X mat.Matrix) (*mat.VecDense, error) {
	if !km.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "PredictCluster")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures {
		return nil, errors.NewDimensionError("KMeans.PredictCluster", km.nFeatures, cols, 1)
	}

	assignments := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, assignThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			assignments.SetVec(i, float64(nearestCenter(mat.Row(nil, i, X), km.centers)))
		}
	})
	return assignments, nil
}

// Predict はクラスタ割り当てを列ベクトル行列として返す
func (km *KMeans) Predict(X mat.Matrix) (mat.Matrix, error) {
	assignments, err := km.PredictCluster(X)
	if err != nil {
		return nil, err
	}

	rows := assignments.Len()
	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		predictions.Set(i, 0, assignments.AtVec(i))
	}
	return predictions, nil
}

// Transform はデータを各クラスタ中心とのユークリッド距離に変換する
func (km *KMeans) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !km.IsFitted() {
		return nil, errors.NewNotFittedError("KMeans", "Transform")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures {
		return nil, errors.NewDimensionError("KMeans.Transform", km.nFeatures, cols, 1)
	}

	distances := mat.NewDense(rows, km.nClusters, nil)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		for c := 0; c < km.nClusters; c++ {
			distances.Set(i, c, euclideanDistance(sample, km.centers[c]))
		}
	}
	return distances, nil
}

// NClusters はクラスタ数を返す
func (km *KMeans) NClusters() int {
	return km.nClusters
}

// ClusterCenters は学習されたクラスタ中心を返す
func (km *KMeans) ClusterCenters() [][]float64 {
	if km.centers == nil {
		return nil
	}
	centers := make([][]float64, len(km.centers))
	for i := range km.centers {
		centers[i] = append([]float64(nil), km.centers[i]...)
	}
	return centers
}

// Labels は学習データのクラスタラベルを返す
func (km *KMeans) Labels() []int {
	if km.labels == nil {
		return nil
	}
	return append([]int(nil), km.labels...)
}

// Inertia は慣性（クラスタ内平方和誤差）を返す
func (km *KMeans) Inertia() float64 {
	return km.inertia
}

// NIter は実行されたイテレーション数を返す
func (km *KMeans) NIter() int {
	return km.nIter
}

// GetParams は推定器のハイパーパラメータを返す
func (km *KMeans) GetParams() map[string]any {
	return map[string]any{
		"n_clusters":   km.nClusters,
		"max_iter":     km.maxIter,
		"tol":          km.tol,
		"n_init":       km.nInit,
		"random_state": km.randomState,
	}
}

// FitSignature はFitの引数レイアウトを宣言する。
// クラスタリングのyは互換性のための引数で、学習には使われない。
func (km *KMeans) FitSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY)
}

// computeInertia は慣性（クラスタ内平方和誤差）を計算
func (km *KMeans) computeInertia(X mat.Matrix, centers [][]float64) float64 {
	rows, _ := X.Dims()
	inertia := 0.0
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		dist := euclideanDistance(sample, centers[nearestCenter(sample, centers)])
		inertia += dist * dist
	}
	return inertia
}

// nearestCenter は最近傍クラスタ中心のインデックスを返す
func nearestCenter(sample []float64, centers [][]float64) int {
	minDist := math.Inf(1)
	nearest := 0
	for c, center := range centers {
		if dist := euclideanDistance(sample, center); dist < minDist {
			minDist = dist
			nearest = c
		}
	}
	return nearest
}

// euclideanDistance はユークリッド距離を計算
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

var (
	_ estimator.Fitter             = (*KMeans)(nil)
	_ estimator.ClusterMixin       = (*KMeans)(nil)
	_ estimator.Predictor          = (*KMeans)(nil)
	_ estimator.ParamsGetter       = (*KMeans)(nil)
	_ introspect.SignatureDeclarer = (*KMeans)(nil)
)
