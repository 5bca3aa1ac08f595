package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"sampahkita/pkg/errors"
)

// Components is the fixed output dimension of the reducer
const Components = 2

// PCA is a fitted linear projection onto the leading principal axes
type PCA struct {
	Mean                   []float64   `json:"mean"`
	Components             [][]float64 `json:"components"` // Components x n_features
	ExplainedVariance      []float64   `json:"explained_variance"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
}

// FitPCA finds the first two principal axes of x.
// Each axis is sign-normalized so its largest-magnitude loading is positive,
// which makes refits on the same data produce identical parameters.
func FitPCA(x [][]float64) (*PCA, error) {
	n, d, err := shape(x)
	if err != nil {
		return nil, errors.Wrap(err, "fit pca")
	}
	if n < Components || d < Components {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "fit pca: need at least %d rows and columns, got %dx%d", Components, n, d)
	}

	flat := make([]float64, 0, n*d)
	for _, row := range x {
		flat = append(flat, row...)
	}
	data := mat.NewDense(n, d, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, errors.New("fit pca: SVD did not converge")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	vars := pc.VarsTo(nil)

	p := &PCA{
		Mean:                   make([]float64, d),
		Components:             make([][]float64, Components),
		ExplainedVariance:      make([]float64, Components),
		ExplainedVarianceRatio: make([]float64, Components),
	}

	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, data)
		p.Mean[j] = stat.Mean(col, nil)
	}

	total := floats.Sum(vars)
	for c := 0; c < Components; c++ {
		axis := mat.Col(nil, c, &vectors)
		normalizeSign(axis)
		p.Components[c] = axis
		p.ExplainedVariance[c] = vars[c]
		if total > 0 {
			p.ExplainedVarianceRatio[c] = vars[c] / total
		}
	}

	return p, nil
}

func normalizeSign(v []float64) {
	idx := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[idx]) {
			idx = i
		}
	}
	if v[idx] < 0 {
		floats.Scale(-1, v)
	}
}

// Width returns the number of input features
func (p *PCA) Width() int {
	return len(p.Mean)
}

// Transform projects one standardized vector onto the two axes
func (p *PCA) Transform(x []float64) ([Components]float64, error) {
	var out [Components]float64
	if p == nil || len(p.Components) != Components {
		return out, errors.ErrNotFitted
	}
	if len(x) != len(p.Mean) {
		return out, errors.Wrapf(errors.ErrFeatureMismatch, "reducer expects %d features, got %d", len(p.Mean), len(x))
	}

	centered := make([]float64, len(x))
	floats.SubTo(centered, x, p.Mean)
	for c, axis := range p.Components {
		out[c] = floats.Dot(centered, axis)
	}
	return out, nil
}

func (p *PCA) validate() error {
	if len(p.Components) != Components {
		return errors.Newf("reducer has %d components, want %d", len(p.Components), Components)
	}
	for c, axis := range p.Components {
		if len(axis) != len(p.Mean) {
			return errors.Newf("reducer component %d has %d loadings, want %d", c, len(axis), len(p.Mean))
		}
	}
	return nil
}
