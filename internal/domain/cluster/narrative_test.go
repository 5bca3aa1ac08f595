package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sampahkita/internal/domain/region"
)

func TestLookupKnown(t *testing.T) {
	n := DefaultTable.Lookup(2)
	assert.True(t, n.Known)
	assert.Equal(t, "Pengelolaan Tinggi", n.Title)
}

func TestLookupFallback(t *testing.T) {
	for _, id := range []int{3, -1, 99} {
		n := DefaultTable.Lookup(id)
		assert.False(t, n.Known)
		assert.Equal(t, id, n.ID)
		assert.Equal(t, UnknownTitle, n.Title)
		assert.Equal(t, UnknownDescription, n.Description)
	}
}

func TestCovers(t *testing.T) {
	assert.True(t, DefaultTable.Covers(3))
	assert.False(t, DefaultTable.Covers(4))
}

func TestList(t *testing.T) {
	list := DefaultTable.List()
	assert.Len(t, list, 3)
	for i, n := range list {
		assert.Equal(t, i, n.ID)
	}
}

func TestSortByClusterAndFind(t *testing.T) {
	as := []Assignment{
		{Record: region.Record{Region: "Kota Depok"}, Cluster: 2},
		{Record: region.Record{Region: "Kab. Bogor"}, Cluster: 0},
		{Record: region.Record{Region: "Kota Bekasi"}, Cluster: 2},
	}

	sorted := SortByCluster(as)
	assert.Equal(t, "Kab. Bogor", sorted[0].Region)
	assert.Equal(t, "Kota Bekasi", sorted[1].Region)
	assert.Equal(t, "Kota Depok", sorted[2].Region)
	assert.Equal(t, "Kota Depok", as[0].Region, "input must not be reordered")

	a, ok := FindByRegion(as, " KOTA DEPOK ")
	assert.True(t, ok)
	assert.Equal(t, 2, a.Cluster)

	_, ok = FindByRegion(as, "Kota Cimahi")
	assert.False(t, ok)

	assert.Equal(t, map[int]int{0: 1, 2: 2}, Sizes(as))
}
