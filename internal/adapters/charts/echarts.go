package charts

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func pointer(b bool) *bool {
	return &b
}

// RenderBarHTML writes an interactive bar chart page
func RenderBarHTML(w io.Writer, b Bar) error {
	if err := b.validate(); err != nil {
		return err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: b.Title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: b.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: b.XLabel, AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: b.YLabel}),
	)

	items := make([]opts.BarData, len(b.Values))
	for i, v := range b.Values {
		items[i] = opts.BarData{Name: b.Labels[i], Value: v}
	}
	bar.SetXAxis(b.Labels).AddSeries(b.SeriesName, items)

	return bar.Render(w)
}

// RenderScatterHTML writes an interactive scatter page with one series per group
func RenderScatterHTML(w io.Writer, s Scatter) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: pointer(true)}),
		charts.WithLegendOpts(opts.Legend{Show: pointer(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XLabel, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YLabel, Type: "value"}),
	)

	ids, byGroup := s.groups()
	for _, g := range ids {
		points := byGroup[g]
		data := make([]opts.ScatterData, len(points))
		for i, p := range points {
			data[i] = opts.ScatterData{Name: p.Name, Value: []interface{}{p.X, p.Y}, SymbolSize: 12}
		}
		scatter.AddSeries(s.groupName(g), data).
			SetSeriesOptions(
				charts.WithLabelOpts(
					opts.Label{
						Show:     pointer(false),
						Position: "top",
					},
				),
			)
	}

	return scatter.Render(w)
}
