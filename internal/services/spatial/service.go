package spatial

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/geo"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/internal/services/clustering"
	"sampahkita/pkg/logger"
)

// YearSource supplies one year's clustered records
type YearSource interface {
	Year(ctx context.Context, year region.Year) (*clustering.YearResult, error)
}

// MapResult is the joined map for one year
type MapResult struct {
	Year region.Year
	JoinResult
}

// Service joins the static polygon table with a year's assignments
type Service struct {
	geometry   geo.Repository
	years      YearSource
	narratives cluster.Table
	log        *logger.Logger
}

// NewService creates a spatial service
func NewService(geometry geo.Repository, years YearSource, narratives cluster.Table, log *logger.Logger) *Service {
	return &Service{
		geometry:   geometry,
		years:      years,
		narratives: narratives,
		log:        log.Component("spatial"),
	}
}

// Map returns every polygon of the boundary file with the year's cluster attached
func (s *Service) Map(ctx context.Context, year region.Year) (*MapResult, error) {
	res, err := s.years.Year(ctx, year)
	if err != nil {
		return nil, err
	}
	regions, err := s.geometry.Regions(ctx)
	if err != nil {
		return nil, err
	}

	joined := Join(regions, res.Assignments)
	unmatchedPolygons := len(joined.Regions) - joined.Matched()
	metrics.RecordUnmatched(int(year), unmatchedPolygons)
	if len(joined.Unmatched) > 0 {
		s.log.Warnw("Records without a matching polygon are not shown on the map",
			"year", int(year),
			"regions", joined.Unmatched,
		)
	}
	s.log.Debugw("Joined polygons", "year", int(year), "polygons", len(joined.Regions), "unmatched_polygons", unmatchedPolygons)

	return &MapResult{Year: year, JoinResult: joined}, nil
}

// GeoJSON returns the year's map as a FeatureCollection
func (s *Service) GeoJSON(ctx context.Context, year region.Year) (*geojson.FeatureCollection, error) {
	m, err := s.Map(ctx, year)
	if err != nil {
		return nil, err
	}
	return FeatureCollection(m.Regions, s.narratives), nil
}
