package metrics

import (
	"math"

	"github.com/fitlog-ml/fitlog/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// validateLabels checks that the two label vectors are non-empty and share
// the same length.
func validateLabels(op string, labelsTrue, labelsPred *mat.VecDense) error {
	n := labelsTrue.Len()
	if n == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if labelsPred.Len() != n {
		return errors.NewDimensionError(op, n, labelsPred.Len(), 0)
	}
	return nil
}

// entropy computes the Shannon entropy (natural log) of a label assignment.
func entropy(labels *mat.VecDense) float64 {
	n := labels.Len()
	counts := make(map[float64]float64)
	for i := 0; i < n; i++ {
		counts[labels.AtVec(i)]++
	}

	var h float64
	total := float64(n)
	for _, c := range counts {
		p := c / total
		h -= p * math.Log(p)
	}
	return h
}

// conditionalEntropy computes H(A|B): the entropy of labels a remaining once
// labels b are known.
func conditionalEntropy(a, b *mat.VecDense) float64 {
	n := a.Len()
	joint := make(map[[2]float64]float64)
	bCounts := make(map[float64]float64)
	for i := 0; i < n; i++ {
		joint[[2]float64{a.AtVec(i), b.AtVec(i)}]++
		bCounts[b.AtVec(i)]++
	}

	var h float64
	total := float64(n)
	for key, c := range joint {
		pJoint := c / total
		pCond := c / bCounts[key[1]]
		h -= pJoint * math.Log(pCond)
	}
	return h
}

// HomogeneityScore measures whether each cluster contains only members of a
// single class: 1 - H(C|K)/H(C), or 1.0 when the true labeling has no
// entropy. The score lies in [0, 1]; 1.0 is perfectly homogeneous.
func HomogeneityScore(labelsTrue, labelsPred *mat.VecDense) (float64, error) {
	if err := validateLabels("HomogeneityScore", labelsTrue, labelsPred); err != nil {
		return 0, err
	}

	hC := entropy(labelsTrue)
	if hC == 0 {
		return 1.0, nil
	}
	return 1.0 - conditionalEntropy(labelsTrue, labelsPred)/hC, nil
}

// CompletenessScore measures whether all members of a class are assigned to
// the same cluster. It is the homogeneity of the swapped label vectors.
func CompletenessScore(labelsTrue, labelsPred *mat.VecDense) (float64, error) {
	if err := validateLabels("CompletenessScore", labelsTrue, labelsPred); err != nil {
		return 0, err
	}
	return HomogeneityScore(labelsPred, labelsTrue)
}

// VMeasureScore is the weighted harmonic mean of homogeneity and
// completeness: (1+beta)*h*c / (beta*h + c). beta=1.0 weights both equally;
// beta must not be negative. Returns 0 when homogeneity and completeness are
// both zero.
func VMeasureScore(labelsTrue, labelsPred *mat.VecDense, beta float64) (float64, error) {
	if beta < 0 {
		return 0, errors.NewValueError("VMeasureScore", "beta must not be negative")
	}
	if err := validateLabels("VMeasureScore", labelsTrue, labelsPred); err != nil {
		return 0, err
	}

	h, err := HomogeneityScore(labelsTrue, labelsPred)
	if err != nil {
		return 0, err
	}
	c, err := CompletenessScore(labelsTrue, labelsPred)
	if err != nil {
		return 0, err
	}

	if h+c == 0 {
		return 0, nil
	}
	return (1 + beta) * h * c / (beta*h + c), nil
}
