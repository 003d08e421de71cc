package autolog

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/metrics"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// MetricSpec は1つの訓練時指標の計算方法を記述します。Name は記録時の
// 短い名前（例: "mse"）、QualifiedName は失敗警告で報告される計算関数の
// 完全修飾名です。
type MetricSpec struct {
	Name          string
	QualifiedName string
	Compute       func(yTrue, yPred, sampleWeight *mat.VecDense) (float64, error)
}

// タスク種別ごとの固定カタログ。スライスの順序がそのまま記録順になります。

var classifierCatalog = []MetricSpec{
	{
		Name:          "precision_score",
		QualifiedName: "fitlog/metrics.PrecisionScore",
		Compute: func(yTrue, yPred, w *mat.VecDense) (float64, error) {
			return metrics.PrecisionScore(yTrue, yPred, metrics.AverageWeighted, w)
		},
	},
	{
		Name:          "recall_score",
		QualifiedName: "fitlog/metrics.RecallScore",
		Compute: func(yTrue, yPred, w *mat.VecDense) (float64, error) {
			return metrics.RecallScore(yTrue, yPred, metrics.AverageWeighted, w)
		},
	},
	{
		Name:          "f1_score",
		QualifiedName: "fitlog/metrics.F1Score",
		Compute: func(yTrue, yPred, w *mat.VecDense) (float64, error) {
			return metrics.F1Score(yTrue, yPred, metrics.AverageWeighted, w)
		},
	},
	{
		Name:          "accuracy_score",
		QualifiedName: "fitlog/metrics.AccuracyScore",
		Compute: func(yTrue, yPred, w *mat.VecDense) (float64, error) {
			return metrics.AccuracyScore(yTrue, yPred, w, true)
		},
	},
}

var regressorCatalog = []MetricSpec{
	{
		Name:          "mse",
		QualifiedName: "fitlog/metrics.MSEWeighted",
		Compute:       metrics.MSEWeighted,
	},
	{
		Name:          "rmse",
		QualifiedName: "fitlog/metrics.RMSEWeighted",
		Compute:       metrics.RMSEWeighted,
	},
	{
		Name:          "mae",
		QualifiedName: "fitlog/metrics.MAEWeighted",
		Compute:       metrics.MAEWeighted,
	},
	{
		Name:          "r2_score",
		QualifiedName: "fitlog/metrics.R2Weighted",
		Compute:       metrics.R2Weighted,
	},
}

// クラスタリング指標はサンプル重みを取りません。
var clustererCatalog = []MetricSpec{
	{
		Name:          "completeness_score",
		QualifiedName: "fitlog/metrics.CompletenessScore",
		Compute: func(yTrue, yPred, _ *mat.VecDense) (float64, error) {
			return metrics.CompletenessScore(yTrue, yPred)
		},
	},
	{
		Name:          "homogeneity_score",
		QualifiedName: "fitlog/metrics.HomogeneityScore",
		Compute: func(yTrue, yPred, _ *mat.VecDense) (float64, error) {
			return metrics.HomogeneityScore(yTrue, yPred)
		},
	},
	{
		Name:          "v_measure_score",
		QualifiedName: "fitlog/metrics.VMeasureScore",
		Compute: func(yTrue, yPred, _ *mat.VecDense) (float64, error) {
			return metrics.VMeasureScore(yTrue, yPred, 1.0)
		},
	},
}

// catalogFor returns the metric catalog matching est's task family.
// Classifier wins over the structurally weaker regressor shape, mirroring
// the registry's kind derivation; transformers (and anything without a
// family) get no catalog.
func catalogFor(est any) ([]MetricSpec, estimator.Kind) {
	switch est.(type) {
	case estimator.ClassifierMixin:
		return classifierCatalog, estimator.KindClassifier
	case estimator.ClusterMixin:
		return clustererCatalog, estimator.KindCluster
	case estimator.RegressorMixin:
		return regressorCatalog, estimator.KindRegressor
	}
	return nil, ""
}

// predictions obtains the predicted values the catalog scores against:
// cluster assignments for clusterers, Predict output otherwise.
func predictions(est any, kind estimator.Kind, x mat.Matrix) (*mat.VecDense, error) {
	if kind == estimator.KindCluster {
		return est.(estimator.ClusterMixin).PredictCluster(x)
	}
	p, ok := est.(estimator.Predictor)
	if !ok {
		return nil, errors.NewValueError("autolog.predictions", "estimator does not implement Predict")
	}
	raw, err := p.Predict(x)
	if err != nil {
		return nil, err
	}
	return toTargetVector(raw)
}
