package region

// Features holds the nine numeric attributes used for scaling, projection and clustering
type Features struct {
	Population         float64 `json:"jumlah_penduduk"`
	TotalWasteTon      float64 `json:"total_sampah_ton"`
	Trucks             float64 `json:"jumlah_truk"`
	Motorcycles        float64 `json:"jumlah_motor"`
	CollectionPoints   float64 `json:"jumlah_tps"`
	Fleet              float64 `json:"total_armada"`
	WastePerCapita     float64 `json:"sampah_perpenduduk"`
	WastePerFleet      float64 `json:"sampah_perarmada"`
	WastePerCollection float64 `json:"sampah_pertps"`
}

// FeatureNames is the column order used at training time.
// Vector and FeaturesFromVector must follow it exactly.
var FeatureNames = []string{
	"jumlah_penduduk",
	"total_sampah_ton",
	"jumlah_truk",
	"jumlah_motor",
	"jumlah_tps",
	"total_armada",
	"sampah_perpenduduk",
	"sampah_perarmada",
	"sampah_pertps",
}

// NumFeatures is len(FeatureNames)
const NumFeatures = 9

// Vector converts Features to the model input order
func (f Features) Vector() []float64 {
	return []float64{
		f.Population,
		f.TotalWasteTon,
		f.Trucks,
		f.Motorcycles,
		f.CollectionPoints,
		f.Fleet,
		f.WastePerCapita,
		f.WastePerFleet,
		f.WastePerCollection,
	}
}

// FeaturesFromVector is the inverse of Vector. Missing trailing values stay zero.
func FeaturesFromVector(v []float64) Features {
	var f Features
	ptrs := f.fields()
	for i := 0; i < len(ptrs) && i < len(v); i++ {
		*ptrs[i] = v[i]
	}
	return f
}

// Set assigns a feature by column name; it reports false for unknown columns
func (f *Features) Set(column string, value float64) bool {
	for i, name := range FeatureNames {
		if name == column {
			*f.fields()[i] = value
			return true
		}
	}
	return false
}

// Get returns a feature by column name
func (f Features) Get(column string) (float64, bool) {
	for i, name := range FeatureNames {
		if name == column {
			return f.Vector()[i], true
		}
	}
	return 0, false
}

func (f *Features) fields() []*float64 {
	return []*float64{
		&f.Population,
		&f.TotalWasteTon,
		&f.Trucks,
		&f.Motorcycles,
		&f.CollectionPoints,
		&f.Fleet,
		&f.WastePerCapita,
		&f.WastePerFleet,
		&f.WastePerCollection,
	}
}

// Matrix stacks the feature vectors of records row by row
func Matrix(records []Record) [][]float64 {
	rows := make([][]float64, len(records))
	for i, r := range records {
		rows[i] = r.Features.Vector()
	}
	return rows
}
