package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"sampahkita/pkg/errors"
)

// KMeans is a fitted nearest-centroid partitioner
type KMeans struct {
	Centroids  [][]float64 `json:"centroids"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
	Seed       int64       `json:"seed"`
}

// KMeansOptions controls the offline fit
type KMeansOptions struct {
	K       int
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// DefaultKMeansOptions mirrors the trainer defaults: k=3, seed 42
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{K: 3, Seed: 42, NInit: 10, MaxIter: 300, Tol: 1e-4}
}

// K returns the number of clusters
func (km *KMeans) K() int {
	return len(km.Centroids)
}

// Predict returns the index of the nearest centroid; ties go to the lowest index
func (km *KMeans) Predict(x []float64) (int, error) {
	if km == nil || len(km.Centroids) == 0 {
		return 0, errors.ErrNotFitted
	}
	if len(x) != len(km.Centroids[0]) {
		return 0, errors.Wrapf(errors.ErrFeatureMismatch, "partitioner expects %d coordinates, got %d", len(km.Centroids[0]), len(x))
	}
	best, _ := nearest(km.Centroids, x)
	return best, nil
}

// FitKMeans runs seeded k-means++ with NInit restarts and keeps the lowest inertia
func FitKMeans(x [][]float64, opts KMeansOptions) (*KMeans, []int, error) {
	n, _, err := shape(x)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fit kmeans")
	}
	if opts.K <= 0 || opts.K > n {
		return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "fit kmeans: k=%d with %d rows", opts.K, n)
	}
	if opts.NInit <= 0 {
		opts.NInit = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 300
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var (
		best       *KMeans
		bestLabels []int
	)
	for run := 0; run < opts.NInit; run++ {
		centroids := initPlusPlus(x, opts.K, rng)
		labels, inertia, iters := lloyd(x, centroids, opts.MaxIter, opts.Tol)
		if best == nil || inertia < best.Inertia {
			best = &KMeans{Centroids: centroids, Inertia: inertia, Iterations: iters, Seed: opts.Seed}
			bestLabels = labels
		}
	}

	return best, bestLabels, nil
}

// initPlusPlus picks the first centroid uniformly, the rest with probability
// proportional to squared distance from the nearest chosen centroid.
func initPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(x[rng.Intn(len(x))]))

	dist := make([]float64, len(x))
	for len(centroids) < k {
		for i, p := range x {
			_, dist[i] = nearest(centroids, p)
		}
		total := floats.Sum(dist)
		if total == 0 {
			centroids = append(centroids, clone(x[rng.Intn(len(x))]))
			continue
		}
		target := rng.Float64() * total
		idx := len(x) - 1
		acc := 0.0
		for i, d := range dist {
			acc += d
			if acc >= target {
				idx = i
				break
			}
		}
		centroids = append(centroids, clone(x[idx]))
	}
	return centroids
}

func lloyd(x [][]float64, centroids [][]float64, maxIter int, tol float64) ([]int, float64, int) {
	k, d := len(centroids), len(centroids[0])
	labels := make([]int, len(x))
	iters := 0

	for iters < maxIter {
		iters++
		for i, p := range x {
			labels[i], _ = nearest(centroids, p)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, p := range x {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		for c := range centroids {
			if counts[c] > 0 {
				continue
			}
			// empty cluster: steal the point farthest from its own centroid
			far := farthest(x, labels, centroids)
			if old := labels[far]; counts[old] > 1 {
				floats.Sub(sums[old], x[far])
				counts[old]--
				sums[c] = clone(x[far])
				counts[c] = 1
				labels[far] = c
			}
		}

		shift := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(centroids[c], sums[c])
			centroids[c] = sums[c]
		}
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, p := range x {
		var d2 float64
		labels[i], d2 = nearest(centroids, p)
		inertia += d2
	}
	return labels, inertia, iters
}

func nearest(centroids [][]float64, p []float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(centroid, p); d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD
}

func farthest(x [][]float64, labels []int, centroids [][]float64) int {
	idx, far := 0, -1.0
	for i, p := range x {
		if d := sqDist(centroids[labels[i]], p); d > far {
			idx, far = i, d
		}
	}
	return idx
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

// relabel renumbers clusters so that cluster 0 has the lowest score,
// keeping narratives such as "low/medium/high" stable across refits.
func (km *KMeans) relabel(labels []int, score []float64) []int {
	k := km.K()
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return score[order[a]] < score[order[b]] })

	newID := make([]int, k)
	centroids := make([][]float64, k)
	for rank, old := range order {
		newID[old] = rank
		centroids[rank] = km.Centroids[old]
	}
	km.Centroids = centroids

	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = newID[l]
	}
	return out
}

func (km *KMeans) validate() error {
	if len(km.Centroids) == 0 {
		return errors.Wrap(errors.ErrNotFitted, "partitioner has no centroids")
	}
	for c, centroid := range km.Centroids {
		if len(centroid) != Components {
			return errors.Newf("centroid %d has %d coordinates, want %d", c, len(centroid), Components)
		}
	}
	return nil
}
