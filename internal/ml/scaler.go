package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"sampahkita/pkg/errors"
)

// StandardScaler re-centers and re-scales each column to zero mean and unit
// variance using parameters frozen at fit time.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Var          []float64 `json:"var"`
	Scale        []float64 `json:"scale"`
	NSamples     int       `json:"n_samples"`
}

// FitScaler computes population mean and variance per column
func FitScaler(x [][]float64, featureNames []string) (*StandardScaler, error) {
	n, d, err := shape(x)
	if err != nil {
		return nil, errors.Wrap(err, "fit scaler")
	}

	s := &StandardScaler{
		FeatureNames: append([]string(nil), featureNames...),
		Mean:         make([]float64, d),
		Var:          make([]float64, d),
		Scale:        make([]float64, d),
		NSamples:     n,
	}

	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, variance := stat.MeanVariance(col, nil)
		if n > 1 {
			// stat.MeanVariance is unbiased; the frozen scaler uses ddof=0
			variance = variance * float64(n-1) / float64(n)
		} else {
			variance = 0
		}
		s.Mean[j] = mean
		s.Var[j] = variance
		s.Scale[j] = scaleFromVariance(variance)
	}

	return s, nil
}

// scaleFromVariance maps (near) zero variance to 1 so constant columns pass through centered
func scaleFromVariance(v float64) float64 {
	sd := math.Sqrt(v)
	if sd < 10*epsilon {
		return 1
	}
	return sd
}

// Width returns the number of input features
func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

// Transform standardizes one feature vector
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if s == nil || len(s.Mean) == 0 {
		return nil, errors.ErrNotFitted
	}
	if len(x) != len(s.Mean) {
		return nil, errors.Wrapf(errors.ErrFeatureMismatch, "scaler expects %d features, got %d", len(s.Mean), len(x))
	}

	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

func (s *StandardScaler) validate() error {
	d := len(s.Mean)
	if d == 0 {
		return errors.Wrap(errors.ErrNotFitted, "scaler has no parameters")
	}
	if len(s.Scale) != d || len(s.Var) != d {
		return errors.Newf("scaler parameter lengths differ: mean=%d var=%d scale=%d", d, len(s.Var), len(s.Scale))
	}
	for j, sc := range s.Scale {
		if sc == 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
			return errors.Newf("scaler scale[%d] is %v", j, sc)
		}
	}
	return nil
}

const epsilon = 2.220446049250313e-16

func shape(x [][]float64) (int, int, error) {
	if len(x) == 0 {
		return 0, 0, errors.Wrap(errors.ErrInvalidInput, "empty matrix")
	}
	d := len(x[0])
	if d == 0 {
		return 0, 0, errors.Wrap(errors.ErrInvalidInput, "matrix has no columns")
	}
	for i, row := range x {
		if len(row) != d {
			return 0, 0, errors.Wrapf(errors.ErrInvalidInput, "row %d has %d columns, want %d", i, len(row), d)
		}
	}
	return len(x), d, nil
}
