package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/pkg/errors"
)

var testFeatureNames = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}

// separableRows returns 10 rows in three well separated groups: 0-3, 4-6, 7-9
func separableRows() [][]float64 {
	base := [][]float64{
		{100, 10, 1, 2, 3, 3, 0.10, 3.3, 3.3},
		{900, 90, 9, 18, 27, 27, 0.20, 5.0, 6.0},
		{5000, 700, 60, 140, 210, 200, 0.30, 7.0, 9.0},
	}
	groups := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}
	rows := make([][]float64, len(groups))
	for i, g := range groups {
		row := make([]float64, len(base[g]))
		for j, v := range base[g] {
			row[j] = v * (1 + 0.001*float64(i%3))
		}
		rows[i] = row
	}
	return rows
}

func fitOptions() FitOptions {
	opts := DefaultFitOptions(2021, testFeatureNames)
	opts.RankColumn = 1
	return opts
}

func TestFitSeparableClusters(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)
	require.Len(t, res.Labels, 10)

	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}, res.Labels,
		"groups ranked by ascending column 1 must map to clusters 0,1,2")
	assert.Equal(t, 3, res.Bundle.K())
	assert.InDelta(t, 1.0, res.Bundle.Reducer.ExplainedVarianceRatio[0]+res.Bundle.Reducer.ExplainedVarianceRatio[1], 0.05)
}

func TestDefaultFitOptionsKeepPartitionerNumbering(t *testing.T) {
	opts := DefaultFitOptions(2021, testFeatureNames)
	assert.Equal(t, NoRank, opts.RankColumn)
	assert.Equal(t, DefaultKMeansOptions(), opts.KMeans)

	rows := separableRows()
	res, err := Fit(rows, opts)
	require.NoError(t, err)
	require.Len(t, res.Labels, 10)

	groups := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}
	labelOf := map[int]int{}
	seen := map[int]bool{}
	for i, g := range groups {
		if l, ok := labelOf[g]; ok {
			assert.Equal(t, l, res.Labels[i], "row %d", i)
			continue
		}
		assert.False(t, seen[res.Labels[i]], "group %d shares a label", g)
		labelOf[g] = res.Labels[i]
		seen[res.Labels[i]] = true
	}

	for i, row := range rows {
		p, err := res.Bundle.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, res.Labels[i], p.Cluster, "row %d", i)
	}
}

func TestFitIsReproducible(t *testing.T) {
	first, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := Fit(separableRows(), fitOptions())
		require.NoError(t, err)
		assert.Equal(t, first.Labels, again.Labels)
		assert.Equal(t, first.Bundle.Partitioner.Centroids, again.Bundle.Partitioner.Centroids)
		assert.Equal(t, first.Bundle.Reducer.Components, again.Bundle.Reducer.Components)
		assert.Equal(t, first.Bundle.Scaler.Mean, again.Bundle.Scaler.Mean)
	}
}

func TestPredictMatchesTrainingAssignment(t *testing.T) {
	rows := separableRows()
	res, err := Fit(rows, fitOptions())
	require.NoError(t, err)
	require.NoError(t, res.Bundle.Validate(testFeatureNames))

	for i, row := range rows {
		p, err := res.Bundle.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, res.Labels[i], p.Cluster, "row %d", i)
		assert.InDelta(t, res.Projected[i][0], p.PC1, 1e-9)
		assert.InDelta(t, res.Projected[i][1], p.PC2, 1e-9)
	}
}

func TestTrainingMeanProjectsToOrigin(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)

	mean := res.Bundle.Scaler.Mean
	scaled, err := res.Bundle.Standardize(mean)
	require.NoError(t, err)
	for j, v := range scaled {
		assert.InDelta(t, 0, v, 1e-9, "feature %d", j)
	}

	p, err := res.Bundle.Predict(mean)
	require.NoError(t, err)
	assert.InDelta(t, 0, p.PC1, 1e-9)
	assert.InDelta(t, 0, p.PC2, 1e-9)
}

func TestFitRejectsBadInput(t *testing.T) {
	_, err := Fit(nil, fitOptions())
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = Fit([][]float64{{1, 2}, {3}}, DefaultFitOptions(0, nil))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	opts := fitOptions()
	opts.FeatureNames = []string{"only", "two"}
	_, err = Fit(separableRows(), opts)
	assert.True(t, errors.Is(err, errors.ErrFeatureMismatch))

	opts = fitOptions()
	opts.KMeans.K = 11
	_, err = Fit(separableRows(), opts)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
