package templates

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Palette is the fill colour of each cluster identifier on maps and cards.
// Identifiers past the end wrap around.
var Palette = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#a65628"}

// NoDataColor fills polygons without a cluster
const NoDataColor = "#cccccc"

// ClusterColor returns the palette colour of a cluster identifier
func ClusterColor(id int) string {
	if id < 0 {
		return NoDataColor
	}
	return Palette[id%len(Palette)]
}

// Title collapses whitespace and title-cases each word of a region name.
// A Caser is stateful, so each call builds its own.
func Title(s string) string {
	return cases.Title(language.Indonesian).String(strings.Join(strings.Fields(s), " "))
}

// Funcs are available in every page
var Funcs = template.FuncMap{
	"comma": func(v float64) string {
		return humanize.Comma(int64(v))
	},
	"commaf": func(v float64) string {
		return humanize.FormatFloat("#,###.##", v)
	},
	"fixed": func(prec int, v float64) string {
		return fmt.Sprintf("%.*f", prec, v)
	},
	"num": func(v float64) string {
		return humanize.FtoaWithDigits(v, 4)
	},
	"color": ClusterColor,
	"title": Title,
	"palette": func() []string {
		return Palette
	},
}
