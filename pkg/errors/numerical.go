package errors

import (
	"math"
)

// CheckNumericalStability reports a NumericalInstabilityError if values
// contain NaN or Inf. Iterative fitters call this on their learned
// coefficients so divergence surfaces as a typed error instead of
// polluting downstream metrics.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// StabilizeExp computes exp with the input clipped so the result never
// overflows to Inf.
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0 // exp(700) is close to the maximum float64
	if value > maxExp {
		return math.Exp(maxExp)
	}
	if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}
