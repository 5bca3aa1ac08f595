package clustering

import (
	"context"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// YearResult is one year's records run through its bundle
type YearResult struct {
	Year        region.Year          `json:"year"`
	K           int                  `json:"k"`
	Fingerprint string               `json:"fingerprint"`
	Assignments []cluster.Assignment `json:"assignments"`
}

// Sorted returns the assignments ordered by cluster, then region
func (r *YearResult) Sorted() []cluster.Assignment {
	return cluster.SortByCluster(r.Assignments)
}

// RegionResult is one region's assignment with its narrative
type RegionResult struct {
	Year       region.Year        `json:"year"`
	Assignment cluster.Assignment `json:"assignment"`
	Narrative  cluster.Narrative  `json:"narrative"`
}

// Service is the single entry point every view uses to obtain clustered records
type Service struct {
	data       region.Repository
	bundles    BundleLoader
	pipeline   *Pipeline
	narratives cluster.Table
	tracker    errors.Tracker
	log        *logger.Logger
}

// NewService creates a clustering service. data and bundles are normally the
// memoising DatasetCache and BundleCache.
func NewService(data region.Repository, bundles BundleLoader, narratives cluster.Table, tracker errors.Tracker, log *logger.Logger) *Service {
	return &Service{
		data:       data,
		bundles:    bundles,
		pipeline:   NewPipeline(),
		narratives: narratives,
		tracker:    tracker,
		log:        log.Component("clustering"),
	}
}

// Narratives returns the cluster description table
func (s *Service) Narratives() cluster.Table {
	return s.narratives
}

// Year loads the year's data and bundle and transforms the records
func (s *Service) Year(ctx context.Context, year region.Year) (*YearResult, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "year %d", year)
	}

	records, err := s.data.LoadYear(ctx, year)
	if err != nil {
		s.report(ctx, year, "data", err)
		return nil, err
	}
	bundle, err := s.bundles.Load(ctx, year)
	if err != nil {
		s.report(ctx, year, "bundle", err)
		return nil, err
	}
	if !s.narratives.Covers(bundle.K()) {
		s.log.Warnw("Bundle has more clusters than narratives; extra clusters use the fallback",
			"year", int(year),
			"k", bundle.K(),
		)
	}

	assignments, err := s.pipeline.Transform(records, bundle)
	if err != nil {
		s.report(ctx, year, "pipeline", err)
		return nil, errors.Wrapf(err, "year %d", year)
	}

	return &YearResult{
		Year:        year,
		K:           bundle.K(),
		Fingerprint: bundle.Fingerprint,
		Assignments: assignments,
	}, nil
}

// AllYears runs Year for every supported year. Years that fail are skipped and
// their errors returned together alongside the years that succeeded.
func (s *Service) AllYears(ctx context.Context) ([]*YearResult, error) {
	var (
		out  []*YearResult
		errs errors.MultiError
	)
	for _, year := range region.SupportedYears {
		res, err := s.Year(ctx, year)
		if err != nil {
			errs.Add(err)
			continue
		}
		out = append(out, res)
	}
	return out, errs.ToError()
}

// Region finds one region in a year and attaches its narrative
func (s *Service) Region(ctx context.Context, year region.Year, name string) (*RegionResult, error) {
	res, err := s.Year(ctx, year)
	if err != nil {
		return nil, err
	}
	a, ok := cluster.FindByRegion(res.Assignments, name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "region %q in %d", name, year)
	}
	return &RegionResult{
		Year:       year,
		Assignment: a,
		Narrative:  s.narratives.Lookup(a.Cluster),
	}, nil
}

// RegionAllYears returns the region's result for every year it appears in
func (s *Service) RegionAllYears(ctx context.Context, name string) ([]*RegionResult, error) {
	years, err := s.AllYears(ctx)
	if len(years) == 0 && err != nil {
		return nil, err
	}

	var out []*RegionResult
	for _, res := range years {
		if a, ok := cluster.FindByRegion(res.Assignments, name); ok {
			out = append(out, &RegionResult{
				Year:       res.Year,
				Assignment: a,
				Narrative:  s.narratives.Lookup(a.Cluster),
			})
		}
	}
	if len(out) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(errors.ErrNotFound, "region %q", name)
	}
	return out, nil
}

// Regions lists the distinct region names of a year in name order
func (s *Service) Regions(ctx context.Context, year region.Year) ([]string, error) {
	records, err := s.data.LoadYear(ctx, year)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Region
	}
	return region.SortedNames(names), nil
}

func (s *Service) report(ctx context.Context, year region.Year, stage string, err error) {
	if errors.Is(err, errors.ErrUnsupportedYear) || errors.Is(err, context.Canceled) {
		return
	}
	s.log.Errorw("Failed to load year", "year", int(year), "stage", stage, "error", err)
	if s.tracker != nil {
		_ = s.tracker.CaptureError(ctx, err, map[string]string{
			"component": "clustering",
			"year":      year.String(),
			"stage":     stage,
		})
	}
}
