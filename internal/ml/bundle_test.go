package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/pkg/errors"
)

func TestScalerConstantColumn(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}, {5, 5}}, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 5}, s.Mean)
	assert.Equal(t, 1.0, s.Scale[1], "zero variance must not divide by zero")
	assert.InDelta(t, 8.0/3.0, s.Var[0], 1e-12, "population variance")

	out, err := s.Transform([]float64{3, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out)

	_, err = s.Transform([]float64{1})
	assert.True(t, errors.Is(err, errors.ErrFeatureMismatch))
}

func TestKMeansPredictTieGoesToLowestIndex(t *testing.T) {
	km := &KMeans{Centroids: [][]float64{{-1, 0}, {1, 0}}}

	c, err := km.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = km.Predict([]float64{0.5, 3})
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestBundleEncodeDecodeRoundTrip(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)

	files, err := res.Bundle.Encode()
	require.NoError(t, err)
	require.Len(t, files, 3)

	decoded, err := DecodeBundle(files)
	require.NoError(t, err)

	assert.Equal(t, 2021, decoded.Year)
	assert.Equal(t, res.Bundle.Scaler, decoded.Scaler)
	assert.Equal(t, res.Bundle.Reducer, decoded.Reducer)
	assert.Equal(t, res.Bundle.Partitioner, decoded.Partitioner)
}

func TestDecodeBundleRejectsWrongKind(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)
	files, err := res.Bundle.Encode()
	require.NoError(t, err)

	files[KindReducer] = files[KindScaler]
	_, err = DecodeBundle(files)
	assert.Error(t, err)

	delete(files, KindPartitioner)
	_, err = DecodeBundle(files)
	assert.Error(t, err)
}

func TestBundleValidate(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)
	b := res.Bundle

	assert.NoError(t, b.Validate(testFeatureNames))
	assert.True(t, errors.Is(b.Validate(testFeatureNames[:8]), errors.ErrFeatureMismatch))

	renamed := append([]string(nil), testFeatureNames...)
	renamed[3] = "z"
	assert.True(t, errors.Is(b.Validate(renamed), errors.ErrFeatureMismatch))

	assert.True(t, errors.Is((&Bundle{}).Validate(testFeatureNames), errors.ErrNotFitted))

	short := *b.Scaler
	short.FeatureNames = testFeatureNames[:1]
	truncated := *b
	truncated.Scaler = &short
	assert.NotPanics(t, func() {
		assert.True(t, errors.Is(truncated.Validate(testFeatureNames), errors.ErrFeatureMismatch))
	})
}

func TestPredictIsDeterministic(t *testing.T) {
	res, err := Fit(separableRows(), fitOptions())
	require.NoError(t, err)

	x := []float64{1200, 150, 12, 30, 40, 42, 0.2, 5.1, 6.3}
	first, err := res.Bundle.Predict(x)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := res.Bundle.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
