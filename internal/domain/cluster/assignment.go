package cluster

import (
	"sort"

	"sampahkita/internal/domain/region"
)

// Assignment is a record augmented with its projected coordinates and cluster.
// It is recomputed on every load and never stored by the server.
type Assignment struct {
	region.Record
	PC1     float64 `json:"pc1"`
	PC2     float64 `json:"pc2"`
	Cluster int     `json:"cluster"`
}

// SortByCluster orders assignments by cluster, then region name
func SortByCluster(as []Assignment) []Assignment {
	out := make([]Assignment, len(as))
	copy(out, as)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cluster != out[j].Cluster {
			return out[i].Cluster < out[j].Cluster
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// FindByRegion returns the assignment whose normalized name equals name
func FindByRegion(as []Assignment, name string) (Assignment, bool) {
	key := region.NormalizeName(name)
	for _, a := range as {
		if a.Key() == key {
			return a, true
		}
	}
	return Assignment{}, false
}

// Sizes counts members per cluster identifier
func Sizes(as []Assignment) map[int]int {
	sizes := make(map[int]int)
	for _, a := range as {
		sizes[a.Cluster]++
	}
	return sizes
}
