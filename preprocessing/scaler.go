// Package preprocessing は特徴量の前処理変換器を提供する。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fitlog-ml/fitlog/core/estimator"
	"github.com/fitlog-ml/fitlog/introspect"
	"github.com/fitlog-ml/fitlog/pkg/errors"
)

func init() {
	estimator.MustRegister("StandardScaler", func() any { return NewStandardScalerDefault() })
	estimator.MustRegister("MinMaxScaler", func() any { return NewMinMaxScalerDefault() })
}

// StandardScaler はデータを平均0、標準偏差1に変換する標準化スケーラー
type StandardScaler struct {
	estimator.BaseEstimator

	mean      []float64 // 各特徴量の平均値
	scale     []float64 // 各特徴量の標準偏差
	nFeatures int

	withMean bool // 平均を引くかどうか
	withStd  bool // 標準偏差で割るかどうか
}

// NewStandardScaler は中心化・スケーリングの有無を指定してスケーラーを組み立てる
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		withMean: withMean,
		withStd:  withStd,
	}
}

// NewStandardScalerDefault は中心化もスケーリングも行う標準構成を返す
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから列ごとの平均と標準偏差を計算する。
// yはAPIの互換性のためにあり、学習では使用しない。
//
// with_mean=false のときは平均を0に固定したまま偏差を原点まわりで
// 測る。scikit-learnのStandardScalerと同じ振る舞い。
func (s *StandardScaler) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.nFeatures = c
	s.mean = make([]float64, c)
	s.scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)

		if s.withMean {
			s.mean[j] = stat.Mean(col, nil)
		}

		s.scale[j] = 1.0
		if s.withStd {
			floats.AddConst(-s.mean[j], col)
			sd := math.Sqrt(floats.Dot(col, col) / float64(r))
			// 定数特徴量はスケール1のままにしてゼロ除算を避ける
			if sd >= 1e-8 {
				s.scale[j] = sd
			}
		}
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.nFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	buf := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(buf, j, X)
		for i, v := range buf {
			buf[i] = (v - s.mean[j]) / s.scale[j]
		}
		out.SetCol(j, buf)
	}
	return out, nil
}

// FitTransform は同じデータで学習と変換を一度に行う
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X, nil); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.nFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	buf := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(buf, j, X)
		for i, v := range buf {
			buf[i] = v*s.scale[j] + s.mean[j]
		}
		out.SetCol(j, buf)
	}
	return out, nil
}

// Mean は列ごとの平均のコピーを返す
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Scale は列ごとの標準偏差のコピーを返す
func (s *StandardScaler) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}

// GetParams はスケーラーのハイパーパラメータを返す
func (s *StandardScaler) GetParams() map[string]any {
	return map[string]any{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// FitSignature はFitの引数レイアウトを宣言する
func (s *StandardScaler) FitSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY)
}

func (s *StandardScaler) String() string {
	desc := fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t", s.withMean, s.withStd)
	if s.IsFitted() {
		desc += fmt.Sprintf(", n_features=%d", s.nFeatures)
	}
	return desc + ")"
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）にスケーリングする
type MinMaxScaler struct {
	estimator.BaseEstimator

	dataMin   []float64 // 学習データの各特徴量の最小値
	dataMax   []float64 // 学習データの各特徴量の最大値
	scale     []float64 // 各特徴量のスケール (max - min)
	nFeatures int

	featureRange [2]float64 // スケーリング後の範囲 [min, max]
}

// NewMinMaxScaler は変換後の値域を指定してスケーラーを組み立てる
func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{featureRange: featureRange}
}

// NewMinMaxScalerDefault は[0,1]へスケーリングする標準構成を返す
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0.0, 1.0})
}

// Fit は訓練データから列ごとの最小値・最大値を求める。
// yはAPIの互換性のためにあり、学習では使用しない。
func (m *MinMaxScaler) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	m.nFeatures = c
	m.dataMin = make([]float64, c)
	m.dataMax = make([]float64, c)
	m.scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		lo := floats.Min(col)
		hi := floats.Max(col)

		m.dataMin[j] = lo
		m.dataMax[j] = hi

		// 定数特徴量はスケール1のままにしてゼロ除算を避ける
		m.scale[j] = 1.0
		if span := hi - lo; math.Abs(span) >= 1e-8 {
			m.scale[j] = span
		}
	}

	m.SetFitted()
	return nil
}

// Transform は学習済みの統計情報を使ってデータをスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}

	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.nFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	buf := make([]float64, r)
	span := m.featureRange[1] - m.featureRange[0]
	for j := 0; j < c; j++ {
		mat.Col(buf, j, X)
		for i, v := range buf {
			buf[i] = (v-m.dataMin[j])/m.scale[j]*span + m.featureRange[0]
		}
		out.SetCol(j, buf)
	}
	return out, nil
}

// FitTransform は同じデータで学習と変換を一度に行う
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X, nil); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", m.nFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	buf := make([]float64, r)
	span := m.featureRange[1] - m.featureRange[0]
	for j := 0; j < c; j++ {
		mat.Col(buf, j, X)
		for i, v := range buf {
			buf[i] = (v-m.featureRange[0])/span*m.scale[j] + m.dataMin[j]
		}
		out.SetCol(j, buf)
	}
	return out, nil
}

// DataMin は学習データの列ごとの最小値のコピーを返す
func (m *MinMaxScaler) DataMin() []float64 {
	return append([]float64(nil), m.dataMin...)
}

// DataMax は学習データの列ごとの最大値のコピーを返す
func (m *MinMaxScaler) DataMax() []float64 {
	return append([]float64(nil), m.dataMax...)
}

// GetParams はスケーラーのハイパーパラメータを返す
func (m *MinMaxScaler) GetParams() map[string]any {
	return map[string]any{
		"feature_range": m.featureRange,
	}
}

// FitSignature はFitの引数レイアウトを宣言する
func (m *MinMaxScaler) FitSignature() introspect.Signature {
	return introspect.NewSignature(introspect.ParamX, introspect.ParamY)
}

func (m *MinMaxScaler) String() string {
	desc := fmt.Sprintf("MinMaxScaler(feature_range=[%.1f, %.1f]", m.featureRange[0], m.featureRange[1])
	if m.IsFitted() {
		desc += fmt.Sprintf(", n_features=%d", m.nFeatures)
	}
	return desc + ")"
}

var (
	_ estimator.Fitter             = (*StandardScaler)(nil)
	_ estimator.TransformerMixin   = (*StandardScaler)(nil)
	_ estimator.ParamsGetter       = (*StandardScaler)(nil)
	_ introspect.SignatureDeclarer = (*StandardScaler)(nil)

	_ estimator.Fitter             = (*MinMaxScaler)(nil)
	_ estimator.TransformerMixin   = (*MinMaxScaler)(nil)
	_ estimator.ParamsGetter       = (*MinMaxScaler)(nil)
	_ introspect.SignatureDeclarer = (*MinMaxScaler)(nil)
)
