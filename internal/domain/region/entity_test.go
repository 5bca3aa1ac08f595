package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/pkg/errors"
)

func TestParseYear(t *testing.T) {
	y, err := ParseYear(" 2022 ")
	require.NoError(t, err)
	assert.Equal(t, Year(2022), y)

	_, err = ParseYear("2019")
	assert.True(t, errors.Is(err, errors.ErrUnsupportedYear))

	_, err = ParseYear("dua ribu")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSortedNames(t *testing.T) {
	names := SortedNames([]string{"Kota Bandung", "Kab. Bogor", " ", "KOTA BANDUNG", "Kab. Bekasi"})
	assert.Equal(t, []string{"Kab. Bekasi", "Kab. Bogor", "Kota Bandung"}, names)
	assert.Empty(t, SortedNames(nil))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "kota bandung", NormalizeName("  Kota BANDUNG\t"))
	assert.Equal(t, Record{Region: " Bogor "}.Key(), NormalizeName("bogor"))
}

func TestFeatureVectorOrder(t *testing.T) {
	f := Features{
		Population:         1,
		TotalWasteTon:      2,
		Trucks:             3,
		Motorcycles:        4,
		CollectionPoints:   5,
		Fleet:              6,
		WastePerCapita:     7,
		WastePerFleet:      8,
		WastePerCollection: 9,
	}

	v := f.Vector()
	require.Len(t, v, NumFeatures)
	require.Len(t, FeatureNames, NumFeatures)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, v)

	for i, name := range FeatureNames {
		got, ok := f.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, v[i], got, name)
	}

	assert.Equal(t, f, FeaturesFromVector(v))
}

func TestFeaturesSet(t *testing.T) {
	var f Features
	assert.True(t, f.Set("jumlah_tps", 12))
	assert.False(t, f.Set("tahun", 2020))
	assert.Equal(t, 12.0, f.CollectionPoints)
}
