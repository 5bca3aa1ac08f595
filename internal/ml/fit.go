package ml

import (
	"sampahkita/pkg/errors"
)

// NoRank keeps the partitioner's own cluster numbering
const NoRank = -1

// FitOptions configures the offline fit. Build it with DefaultFitOptions: the
// zero value ranks clusters by the first column.
type FitOptions struct {
	Year         int
	FeatureNames []string
	KMeans       KMeansOptions

	// RankColumn, when >= 0, renumbers clusters by ascending mean of that raw
	// input column so cluster 0 is always the "lowest" group. NoRank disables it.
	RankColumn int
}

// DefaultFitOptions returns options for year with default k-means settings and no ranking
func DefaultFitOptions(year int, featureNames []string) FitOptions {
	return FitOptions{
		Year:         year,
		FeatureNames: featureNames,
		KMeans:       DefaultKMeansOptions(),
		RankColumn:   NoRank,
	}
}

// FitResult is a fitted bundle plus the training rows' projections and labels
type FitResult struct {
	Bundle    *Bundle
	Projected [][Components]float64
	Labels    []int
}

// Fit runs scaler -> reducer -> partitioner in that order. Both the reducer
// and the partitioner consume scaler output; the partitioner clusters in the
// reducer's 2-D space, matching what Bundle.Predict does at serve time.
func Fit(x [][]float64, opts FitOptions) (*FitResult, error) {
	if _, d, err := shape(x); err != nil {
		return nil, errors.Wrap(err, "fit")
	} else if len(opts.FeatureNames) > 0 && len(opts.FeatureNames) != d {
		return nil, errors.Wrapf(errors.ErrFeatureMismatch, "fit: %d feature names for %d columns", len(opts.FeatureNames), d)
	}

	scaler, err := FitScaler(x, opts.FeatureNames)
	if err != nil {
		return nil, err
	}

	scaled := make([][]float64, len(x))
	for i, row := range x {
		if scaled[i], err = scaler.Transform(row); err != nil {
			return nil, errors.Wrapf(err, "fit: standardize row %d", i)
		}
	}

	reducer, err := FitPCA(scaled)
	if err != nil {
		return nil, err
	}

	projected := make([][Components]float64, len(scaled))
	points := make([][]float64, len(scaled))
	for i, row := range scaled {
		if projected[i], err = reducer.Transform(row); err != nil {
			return nil, errors.Wrapf(err, "fit: project row %d", i)
		}
		points[i] = projected[i][:]
	}

	partitioner, labels, err := FitKMeans(points, opts.KMeans)
	if err != nil {
		return nil, err
	}

	if opts.RankColumn >= 0 && opts.RankColumn < len(x[0]) {
		labels = partitioner.relabel(labels, clusterMeans(x, labels, partitioner.K(), opts.RankColumn))
	}

	return &FitResult{
		Bundle: &Bundle{
			Year:        opts.Year,
			Scaler:      scaler,
			Reducer:     reducer,
			Partitioner: partitioner,
		},
		Projected: projected,
		Labels:    labels,
	}, nil
}

func clusterMeans(x [][]float64, labels []int, k, column int) []float64 {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, l := range labels {
		sums[l] += x[i][column]
		counts[l]++
	}
	for c := range sums {
		if counts[c] > 0 {
			sums[c] /= float64(counts[c])
		}
	}
	return sums
}
