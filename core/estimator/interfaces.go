package estimator

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// WeightedFitter はサンプル重み付き学習に対応したモデルのインターフェース
type WeightedFitter interface {
	// FitWeighted はサンプルごとの重みを考慮して学習させる
	// sampleWeight が nil の場合は全サンプルを等価に扱う
	FitWeighted(X, y mat.Matrix, sampleWeight []float64) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the default evaluation score of the prediction
	// (R^2 for regressors, accuracy for classifiers).
	Score(X, y mat.Matrix) (float64, error)
}

// WeightedScorer is implemented by models whose scoring accepts
// per-sample weights.
type WeightedScorer interface {
	// ScoreWeighted returns the evaluation score with each sample
	// weighted by sampleWeight. A nil weight is equivalent to Score.
	ScoreWeighted(X, y mat.Matrix, sampleWeight []float64) (float64, error)
}

// ParamsGetter is the interface for models that expose their hyperparameters.
type ParamsGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]any
}

// ClassifierMixin is implemented by classification models.
type ClassifierMixin interface {
	Predictor

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// RegressorMixin is implemented by regression models: estimators that
// predict continuous targets and score themselves. Classifiers and
// clusterers satisfy this method set too, so the registry treats an
// estimator as a regressor only when it is neither of those.
type RegressorMixin interface {
	Predictor
	Scorer
}

// TransformerMixin is implemented by feature transformers.
type TransformerMixin interface {
	Transformer

	// FitTransform learns the transform parameters and applies them in one step.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ClusterMixin is implemented by clustering models.
type ClusterMixin interface {
	// PredictCluster assigns each sample in X to its nearest cluster.
	PredictCluster(X mat.Matrix) (*mat.VecDense, error)

	// NClusters returns the number of clusters the model was configured with.
	NClusters() int
}
