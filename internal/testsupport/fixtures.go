package testsupport

import (
	"fmt"

	"github.com/paulmach/orb"

	"sampahkita/internal/domain/geo"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/ml"
)

// GridCentroids places k centroids on a 10-unit grid: (0,0), (10,0), (0,10), (10,10), ...
func GridCentroids(k int) [][]float64 {
	out := make([][]float64, k)
	for i := range out {
		out[i] = []float64{float64(10 * (i % 2)), float64(10 * (i / 2))}
	}
	return out
}

// GridBundle returns an identity-scaled bundle whose projection is the first two
// features, so a record at (Population, TotalWasteTon) = centroid lands in that cluster.
func GridBundle(year int, k int) *ml.Bundle {
	d := region.NumFeatures
	zeros := make([]float64, d)
	ones := make([]float64, d)
	for i := range ones {
		ones[i] = 1
	}
	axis := func(j int) []float64 {
		a := make([]float64, d)
		a[j] = 1
		return a
	}

	return &ml.Bundle{
		Year: year,
		Scaler: &ml.StandardScaler{
			FeatureNames: region.FeatureNames,
			Mean:         zeros,
			Var:          ones,
			Scale:        ones,
			NSamples:     k,
		},
		Reducer: &ml.PCA{
			Mean:                   make([]float64, d),
			Components:             [][]float64{axis(0), axis(1)},
			ExplainedVariance:      []float64{1, 1},
			ExplainedVarianceRatio: []float64{0.5, 0.5},
		},
		Partitioner: &ml.KMeans{Centroids: GridCentroids(k), Seed: 42},
		Fingerprint: fmt.Sprintf("%064d", year),
	}
}

// Record builds a record whose projection under GridBundle is (x, y)
func Record(name string, year int, x, y float64) region.Record {
	r := region.Record{Region: name, Year: region.Year(year)}
	r.Features.Population = x
	r.Features.TotalWasteTon = y
	r.Features.CollectionPoints = 10
	r.Features.WastePerFleet = 2.5
	return r
}

// Square builds a unit-square region with its south-west corner at (x, y)
func Square(name string, x, y float64) geo.Region {
	poly := orb.Polygon{orb.Ring{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
	return geo.NewRegion(name, poly, map[string]interface{}{"KABKOT": name})
}
