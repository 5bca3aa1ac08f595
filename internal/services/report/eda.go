package report

import (
	"context"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"sampahkita/internal/adapters/charts"
	"sampahkita/internal/domain/region"
	"sampahkita/pkg/errors"
)

// StatRow is the descriptive statistics of one feature column
type StatRow struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Q2     float64 `json:"q2"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// EDAView is the raw table of a year with its summary statistics
type EDAView struct {
	Year       region.Year     `json:"year"`
	Columns    []string        `json:"columns"`
	Records    []region.Record `json:"records"`
	Stats      []StatRow       `json:"stats"`
	Incomplete int             `json:"incomplete"`
}

// EDA returns the year's data table and descriptive statistics
func (s *Service) EDA(ctx context.Context, year region.Year) (*EDAView, error) {
	records, err := s.data.LoadYear(ctx, year)
	if err != nil {
		return nil, err
	}
	stats, err := Describe(records)
	if err != nil {
		return nil, errors.Wrapf(err, "describe %d", year)
	}

	view := &EDAView{
		Year:    year,
		Columns: append([]string{region.RegionColumn}, region.FeatureNames...),
		Records: records,
		Stats:   stats,
	}
	for _, r := range records {
		if r.Incomplete() {
			view.Incomplete++
		}
	}
	return view, nil
}

// Describe computes count, mean, median, standard deviation, min, quartiles
// and max of every feature column
func Describe(records []region.Record) ([]StatRow, error) {
	if len(records) == 0 {
		return nil, nil
	}

	matrix := region.Matrix(records)
	cols := make([]series.Series, len(region.FeatureNames))
	for j, name := range region.FeatureNames {
		values := make([]float64, len(matrix))
		for i, row := range matrix {
			values[i] = row[j]
		}
		cols[j] = series.New(values, series.Float, name)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, df.Err
	}
	desc := df.Describe()
	if desc.Err != nil {
		return nil, desc.Err
	}

	labels := desc.Col("column").Records()
	out := make([]StatRow, len(region.FeatureNames))
	for j, name := range region.FeatureNames {
		values := desc.Col(name).Float()
		row := StatRow{Column: name, Count: df.Nrow()}
		for i, label := range labels {
			switch label {
			case "mean":
				row.Mean = values[i]
			case "median":
				row.Median = values[i]
			case "stddev":
				row.Std = values[i]
			case "min":
				row.Min = values[i]
			case "25%":
				row.Q1 = values[i]
			case "50%":
				row.Q2 = values[i]
			case "75%":
				row.Q3 = values[i]
			case "max":
				row.Max = values[i]
			}
		}
		out[j] = row
	}
	return out, nil
}

// WasteBar is the total_sampah_ton per region chart of a year
func (s *Service) WasteBar(ctx context.Context, year region.Year) (charts.Bar, error) {
	records, err := s.data.LoadYear(ctx, year)
	if err != nil {
		return charts.Bar{}, err
	}

	bar := charts.Bar{
		Title:      "Total Sampah per Kabupaten " + year.String(),
		SeriesName: "total_sampah_ton",
		XLabel:     region.RegionColumn,
		YLabel:     "ton",
		Labels:     make([]string, len(records)),
		Values:     make([]float64, len(records)),
	}
	for i, r := range records {
		bar.Labels[i] = r.Region
		bar.Values[i] = r.Features.TotalWasteTon
	}
	return bar, nil
}
