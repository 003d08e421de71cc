// Package log defines standard attribute keys for machine learning operations.
//
// Every component logs with the same key vocabulary so that records
// from the tracking client, the autologging session, and the estimators
// can be correlated in one stream. Keys are hierarchical ("model.name",
// "run.id", "metric.value"), which keeps them greppable and lets log
// pipelines filter on a prefix.

package log

// Model and operation context.
const (
	// ModelNameKey is the estimator's type name, e.g. "LinearRegression"
	// or "StandardScaler".
	ModelNameKey = "model.name"

	// EstimatorIDKey is a unique identifier for one estimator instance,
	// usually a UUID. Distinguishes several instances of the same type.
	EstimatorIDKey = "estimator.id"

	// EstimatorKindKey is the task family of an estimator.
	// Standard values: "classifier", "regressor", "transformer", "cluster"
	EstimatorKindKey = "estimator.kind"

	// OperationKey is the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey names the package doing the work, e.g. "autolog",
	// "tracking", "metrics".
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase: "training", "inference",
	// "validation", "preprocessing".
	PhaseKey = "ml.phase"
)

// Tracking and run context, emitted by the tracking client and the
// autologging session.
const (
	// RunIDKey is the unique identifier of a tracking run.
	RunIDKey = "run.id"

	// RunNameKey is the human-readable name of a tracking run.
	RunNameKey = "run.name"

	// MetricNameKey is the key under which a metric value was recorded,
	// e.g. "mse", "f1_score", "training_score".
	MetricNameKey = "metric.name"

	// MetricValueKey is the recorded value of a metric.
	MetricValueKey = "metric.value"

	// MetricStepKey is the step counter of a recorded metric.
	MetricStepKey = "metric.step"

	// ParamCountKey is the number of parameters in a logged batch.
	ParamCountKey = "param.count"

	// SinkNameKey identifies the sink that received (or rejected) an
	// entity: "memory", "influx", "prometheus", "sqlite".
	SinkNameKey = "sink.name"
)

// Data shape.
const (
	// SamplesKey is the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns. Worth logging whenever a
	// shape mismatch is a plausible failure.
	FeaturesKey = "data.features"

	// TargetsKey is the number of target variables, 1 unless the
	// problem is multi-target.
	TargetsKey = "data.targets"

	// BatchSizeKey is the size of a processing batch, e.g. one chunk of
	// logged parameters.
	BatchSizeKey = "data.batch_size"
)

// Performance and training progress.
const (
	// DurationMsKey is the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey is a classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// LossKey is a loss value observed during training or evaluation.
	LossKey = "metrics.loss"

	// R2ScoreKey is the R² coefficient of determination, at most 1.0.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey is the current iteration of an iterative algorithm.
	IterationKey = "training.iteration"
)

// Error and warning context.
const (
	// ErrorCodeKey is a structured error code for programmatic handling,
	// e.g. "DIMENSION_MISMATCH", "NOT_FITTED", "MISSING_ARGUMENT".
	ErrorCodeKey = "error.code"

	// ErrorTypeKey is the Go type of the error, e.g. "ValidationError",
	// "MetricComputationError", "IntrospectionError".
	ErrorTypeKey = "error.type"

	// StacktraceKey carries stack trace text, populated by the error
	// logging helpers.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey is a hint for resolving the problem, e.g.
	// "Check input data shape" or "Declare a fit signature".
	SuggestionKey = "error.suggestion"
)

// Configuration and reproducibility.
const (
	// HyperParamsKey holds model hyperparameters as one structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey is the random seed in effect, for reproducing runs.
	RandomSeedKey = "config.random_seed"

	// LibraryVersionKey is the estimator library version observed by
	// the autologging session.
	LibraryVersionKey = "config.library_version"
)

// Standard values for OperationKey, PhaseKey and ErrorCodeKey. Using
// the constants keeps the vocabulary closed.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorMissingArgument   = "MISSING_ARGUMENT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
