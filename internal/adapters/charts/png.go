package charts

import (
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// RenderBarPNG writes a static bar chart image
func RenderBarPNG(w io.Writer, b Bar) error {
	if err := b.validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = b.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = b.XLabel
	p.Y.Label.Text = b.YLabel

	bars, err := plotter.NewBarChart(plotter.Values(b.Values), vg.Points(14))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(b.Labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0

	width := vg.Length(math.Max(8, float64(len(b.Values))*0.45)) * vg.Inch
	return save(w, p, width, 6*vg.Inch)
}

// RenderScatterPNG writes a static scatter image with one glyph colour per group
func RenderScatterPNG(w io.Writer, s Scatter) error {
	p := plot.New()
	p.Title.Text = s.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	ids, byGroup := s.groups()
	for i, g := range ids {
		points := byGroup[g]
		xys := make(plotter.XYs, len(points))
		for j, pt := range points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}

		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = plotutil.Shape(i)
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(s.groupName(g), sc)
	}

	return save(w, p, 8*vg.Inch, 6*vg.Inch)
}

func save(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
