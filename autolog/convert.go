package autolog

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/fitlog-ml/fitlog/pkg/errors"
)

// toFeatureMatrix は呼び出し時の特徴量をgonumの行列に変換します。
// mat.Matrix はそのまま、[][]float64 は行優先でコピーされます。
func toFeatureMatrix(v any) (mat.Matrix, error) {
	const op = "autolog.toFeatureMatrix"

	switch x := v.(type) {
	case nil:
		return nil, errors.NewValueError(op, "features are nil")
	case mat.Matrix:
		if isNilMatrix(x) {
			return nil, errors.NewValueError(op, "features are nil")
		}
		return x, nil
	case [][]float64:
		rows := len(x)
		if rows == 0 {
			return nil, errors.NewValueError(op, "features are empty")
		}
		cols := len(x[0])
		if cols == 0 {
			return nil, errors.NewValueError(op, "features have no columns")
		}
		out := mat.NewDense(rows, cols, nil)
		for i, row := range x {
			if len(row) != cols {
				return nil, errors.NewValueError(op,
					fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), cols))
			}
			out.SetRow(i, row)
		}
		return out, nil
	default:
		return nil, errors.NewValueError(op,
			fmt.Sprintf("unsupported feature type %T (want mat.Matrix or [][]float64)", v))
	}
}

// toTargetVector はターゲットや予測値をgonumのベクトルに変換します。
// 受け付ける型は *mat.VecDense、[]float64、および単一列の mat.Matrix です。
func toTargetVector(v any) (*mat.VecDense, error) {
	const op = "autolog.toTargetVector"

	switch y := v.(type) {
	case nil:
		return nil, errors.NewValueError(op, "target is nil")
	case *mat.VecDense:
		if y == nil {
			return nil, errors.NewValueError(op, "target is nil")
		}
		return y, nil
	case []float64:
		if len(y) == 0 {
			return nil, errors.NewValueError(op, "target is empty")
		}
		return mat.NewVecDense(len(y), append([]float64(nil), y...)), nil
	case mat.Matrix:
		if isNilMatrix(y) {
			return nil, errors.NewValueError(op, "target is nil")
		}
		r, c := y.Dims()
		if c != 1 {
			return nil, errors.NewValueError(op,
				fmt.Sprintf("target matrix must have exactly one column, got %d", c))
		}
		if r == 0 {
			return nil, errors.NewValueError(op, "target is empty")
		}
		out := mat.NewVecDense(r, nil)
		for i := 0; i < r; i++ {
			out.SetVec(i, y.At(i, 0))
		}
		return out, nil
	default:
		return nil, errors.NewValueError(op,
			fmt.Sprintf("unsupported target type %T (want *mat.VecDense, []float64 or a single-column mat.Matrix)", v))
	}
}

// toWeightVector はサンプル重みを変換します。ターゲットと同じ型を受け付け
// ますが、重みは省略可能なので nil 相当の値は (nil, nil) になります。
func toWeightVector(v any) (*mat.VecDense, error) {
	switch w := v.(type) {
	case nil:
		return nil, nil
	case *mat.VecDense:
		if w == nil {
			return nil, nil
		}
	case []float64:
		if w == nil {
			return nil, nil
		}
	}
	return toTargetVector(v)
}

// vecSlice copies a gonum vector into a plain slice for the
// []float64-based fitting interfaces.
func vecSlice(v *mat.VecDense) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// isNilMatrix catches typed-nil matrices hidden behind the interface.
func isNilMatrix(m mat.Matrix) bool {
	switch v := m.(type) {
	case *mat.Dense:
		return v == nil
	case *mat.VecDense:
		return v == nil
	}
	return m == nil
}
