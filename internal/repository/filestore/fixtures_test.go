package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const yearCSV = `Kabupaten ;Tahun;Jumlah_Penduduk;total_sampah_ton;jumlah_truk;jumlah_motor;jumlah_tps;total_armada;sampah_perpenduduk;sampah_perarmada;sampah_pertps
Kab. Bogor;2021;5.427.068;1.234,5;120;40;300;160;0,23;7,7;4,1
Kota Bandung;2021;2444160;1594,2;90;30;152;120;0,65;13,3;10,5
Kab. Garut;2021;2585607;;50;x;90;50;0,2;12;6
;;;;;;;;;;
`

const boundaries = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"KABKOT": "KAB. BOGOR ", "PROVINSI": "JAWA BARAT"},
      "geometry": {"type": "Polygon", "coordinates": [[[106,-7],[107,-7],[107,-6],[106,-6],[106,-7]]]}
    },
    {
      "type": "Feature",
      "properties": {"KABKOT": "Kota Bandung"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[107.5,-7],[107.7,-7],[107.7,-6.8],[107.5,-6.8],[107.5,-7]]]]}
    },
    {
      "type": "Feature",
      "properties": {"KABKOT": "Kab. Pangandaran"},
      "geometry": {"type": "Polygon", "coordinates": [[[108,-8],[109,-8],[109,-7],[108,-7],[108,-8]]]}
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// trainingRows returns ten nine-feature rows in three separated groups
func trainingRows() [][]float64 {
	base := [][]float64{
		{1e5, 10, 1, 2, 3, 3, 0.10, 3.3, 3.3},
		{9e5, 90, 9, 18, 27, 27, 0.20, 5.0, 6.0},
		{5e6, 700, 60, 140, 210, 200, 0.30, 7.0, 9.0},
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
