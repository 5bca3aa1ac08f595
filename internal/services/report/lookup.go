package report

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/services/clustering"
	"sampahkita/pkg/errors"
)

// Mode selects between a single year and every year in the lookup view
type Mode string

const (
	ModeYear Mode = "year"
	ModeAll  Mode = "all"
)

// ParseMode validates the lookup mode; empty means ModeYear
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeYear:
		return ModeYear, nil
	case ModeAll:
		return ModeAll, nil
	}
	return "", errors.NewValidationError("mode", "must be year or all", s)
}

// MetricCards are the three headline figures of a region-year
type MetricCards struct {
	CollectionPoints string `json:"jumlah_tps"`
	WastePerFleet    string `json:"sampah_perarmada"`
	TotalWasteTon    string `json:"total_sampah_ton"`
}

// NewMetricCards formats the headline figures of r for display
func NewMetricCards(r region.Record) MetricCards {
	return MetricCards{
		CollectionPoints: humanize.Comma(int64(r.Features.CollectionPoints)),
		WastePerFleet:    fmt.Sprintf("%.2f", r.Features.WastePerFleet),
		TotalWasteTon:    humanize.FormatFloat("#,###.##", r.Features.TotalWasteTon),
	}
}

// LookupEntry is one region-year card
type LookupEntry struct {
	Year       region.Year        `json:"year"`
	Assignment cluster.Assignment `json:"assignment"`
	Narrative  cluster.Narrative  `json:"narrative"`
	Cards      MetricCards        `json:"cards"`
}

// LookupView shows a region's cluster for one or all years
type LookupView struct {
	Mode    Mode          `json:"mode"`
	Year    region.Year   `json:"year,omitempty"`
	Region  string        `json:"region"`
	Options []string      `json:"options"`
	Entries []LookupEntry `json:"entries"`
	Columns []string      `json:"columns"`
}

// Lookup builds the region search view. An empty name returns only the options.
func (s *Service) Lookup(ctx context.Context, mode Mode, year region.Year, name string) (*LookupView, error) {
	view := &LookupView{
		Mode:    mode,
		Region:  name,
		Columns: append([]string{region.YearColumn, region.RegionColumn, "cluster"}, region.FeatureNames...),
	}

	switch mode {
	case ModeAll:
		options, err := s.allRegionNames(ctx)
		if err != nil {
			return nil, err
		}
		view.Options = options
		if name == "" {
			return view, nil
		}
		results, err := s.clusters.RegionAllYears(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			view.Entries = append(view.Entries, newEntry(r))
		}

	default:
		view.Year = year
		options, err := s.clusters.Regions(ctx, year)
		if err != nil {
			return nil, err
		}
		view.Options = region.SortedNames(options)
		if name == "" {
			return view, nil
		}
		r, err := s.clusters.Region(ctx, year, name)
		if err != nil {
			return nil, err
		}
		view.Entries = []LookupEntry{newEntry(r)}
	}

	if len(view.Entries) > 0 {
		view.Region = view.Entries[0].Assignment.Region
	}
	return view, nil
}

func newEntry(r *clustering.RegionResult) LookupEntry {
	return LookupEntry{
		Year:       r.Year,
		Assignment: r.Assignment,
		Narrative:  r.Narrative,
		Cards:      NewMetricCards(r.Assignment.Record),
	}
}

// allRegionNames unions the names of every year that loads
func (s *Service) allRegionNames(ctx context.Context) ([]string, error) {
	var (
		names []string
		errs  errors.MultiError
	)
	for _, year := range region.SupportedYears {
		n, err := s.clusters.Regions(ctx, year)
		if err != nil {
			errs.Add(err)
			continue
		}
		names = append(names, n...)
	}
	if len(names) == 0 && errs.HasErrors() {
		return nil, errs.ToError()
	}
	if errs.HasErrors() {
		s.log.Warnw("Some years are missing from the region list", "error", errs.ToError())
	}
	return region.SortedNames(names), nil
}
