package metrics

import (
	"sort"

	"github.com/fitlog-ml/fitlog/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Average selects how per-label classification scores are combined into a
// single value, following scikit-learn's `average` parameter.
type Average string

const (
	// AverageWeighted weights each label's score by its support
	// (the weighted count of true samples for that label).
	AverageWeighted Average = "weighted"
	// AverageMacro is the unweighted mean of the per-label scores.
	AverageMacro Average = "macro"
	// AverageMicro computes the score from the global confusion counts.
	AverageMicro Average = "micro"
)

// labelCounts holds the weighted confusion counts for one label.
type labelCounts struct {
	label     float64
	tp        float64 // weight of samples with yTrue == label and yPred == label
	predicted float64 // weight of samples with yPred == label (tp + fp)
	actual    float64 // weight of samples with yTrue == label (tp + fn), the support
}

// confusionCounts accumulates per-label weighted counts over the union of
// labels appearing in yTrue and yPred, ordered ascending by label value.
func confusionCounts(yTrue, yPred, sampleWeight *mat.VecDense) []labelCounts {
	n := yTrue.Len()

	byLabel := make(map[float64]*labelCounts)
	at := func(label float64) *labelCounts {
		c, ok := byLabel[label]
		if !ok {
			c = &labelCounts{label: label}
			byLabel[label] = c
		}
		return c
	}

	for i := 0; i < n; i++ {
		w := weightAt(sampleWeight, i)
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)

		at(t).actual += w
		at(p).predicted += w
		if t == p {
			at(t).tp += w
		}
	}

	counts := make([]labelCounts, 0, len(byLabel))
	for _, c := range byLabel {
		counts = append(counts, *c)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].label < counts[j].label })
	return counts
}

// safeDiv returns a/b, or 0 when b is zero. Matches scikit-learn's
// zero_division=0 default for ill-defined per-label scores.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// fBeta combines precision and recall; beta=1 gives the F1 score.
func fBeta(precision, recall, beta float64) float64 {
	b2 := beta * beta
	return safeDiv((1+b2)*precision*recall, b2*precision+recall)
}

// scoreKind selects which per-label score precisionRecallF computes.
type scoreKind int

const (
	kindPrecision scoreKind = iota
	kindRecall
	kindF1
)

// precisionRecallF computes one averaged classification score from the
// weighted confusion counts.
func precisionRecallF(op string, yTrue, yPred *mat.VecDense, average Average, sampleWeight *mat.VecDense, kind scoreKind) (float64, error) {
	if _, err := validateWeighted(op, yTrue, yPred, sampleWeight); err != nil {
		return 0, err
	}

	counts := confusionCounts(yTrue, yPred, sampleWeight)

	perLabel := func(c labelCounts) float64 {
		switch kind {
		case kindPrecision:
			return safeDiv(c.tp, c.predicted)
		case kindRecall:
			return safeDiv(c.tp, c.actual)
		default:
			return fBeta(safeDiv(c.tp, c.predicted), safeDiv(c.tp, c.actual), 1.0)
		}
	}

	switch average {
	case AverageWeighted:
		var sum, support float64
		for _, c := range counts {
			sum += c.actual * perLabel(c)
			support += c.actual
		}
		return safeDiv(sum, support), nil

	case AverageMacro:
		var sum float64
		nLabels := 0
		for _, c := range counts {
			sum += perLabel(c)
			nLabels++
		}
		return safeDiv(sum, float64(nLabels)), nil

	case AverageMicro:
		var tp, predicted, actual float64
		for _, c := range counts {
			tp += c.tp
			predicted += c.predicted
			actual += c.actual
		}
		switch kind {
		case kindPrecision:
			return safeDiv(tp, predicted), nil
		case kindRecall:
			return safeDiv(tp, actual), nil
		default:
			return fBeta(safeDiv(tp, predicted), safeDiv(tp, actual), 1.0), nil
		}

	default:
		return 0, errors.NewValueError(op, "average must be 'weighted', 'macro' or 'micro', got '"+string(average)+"'")
	}
}

// AccuracyScore computes the (weighted) classification accuracy.
//
// With normalize=true the result is the weighted fraction of correctly
// classified samples; with normalize=false it is the weighted count of
// correct samples. sampleWeight may be nil for unweighted accuracy.
func AccuracyScore(yTrue, yPred, sampleWeight *mat.VecDense, normalize bool) (float64, error) {
	wSum, err := validateWeighted("AccuracyScore", yTrue, yPred, sampleWeight)
	if err != nil {
		return 0, err
	}

	var correct float64
	for i := 0; i < yTrue.Len(); i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct += weightAt(sampleWeight, i)
		}
	}

	if normalize {
		return correct / wSum, nil
	}
	return correct, nil
}

// PrecisionScore computes the averaged precision over the labels present in
// yTrue and yPred. A label predicted zero times contributes 0, matching
// scikit-learn's zero_division=0 default.
func PrecisionScore(yTrue, yPred *mat.VecDense, average Average, sampleWeight *mat.VecDense) (float64, error) {
	return precisionRecallF("PrecisionScore", yTrue, yPred, average, sampleWeight, kindPrecision)
}

// RecallScore computes the averaged recall over the labels present in yTrue
// and yPred.
func RecallScore(yTrue, yPred *mat.VecDense, average Average, sampleWeight *mat.VecDense) (float64, error) {
	return precisionRecallF("RecallScore", yTrue, yPred, average, sampleWeight, kindRecall)
}

// F1Score computes the averaged F1 score (the harmonic mean of precision and
// recall) over the labels present in yTrue and yPred.
func F1Score(yTrue, yPred *mat.VecDense, average Average, sampleWeight *mat.VecDense) (float64, error) {
	return precisionRecallF("F1Score", yTrue, yPred, average, sampleWeight, kindF1)
}
