package report

import (
	"context"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/services/clustering"
	"sampahkita/internal/services/spatial"
	"sampahkita/pkg/logger"
)

// ClusterSource is the part of the clustering service the views read
type ClusterSource interface {
	Year(ctx context.Context, year region.Year) (*clustering.YearResult, error)
	Region(ctx context.Context, year region.Year, name string) (*clustering.RegionResult, error)
	RegionAllYears(ctx context.Context, name string) ([]*clustering.RegionResult, error)
	Regions(ctx context.Context, year region.Year) ([]string, error)
	Narratives() cluster.Table
}

// MapSource joins polygons with a year's clusters
type MapSource interface {
	Map(ctx context.Context, year region.Year) (*spatial.MapResult, error)
}

// Cache stores computed views; a miss is (false, nil)
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Service assembles the dashboard views from the clustering and spatial services
type Service struct {
	clusters ClusterSource
	data     region.Repository
	maps     MapSource
	content  Content
	cache    Cache
	log      *logger.Logger
}

// NewService creates a report service. data is the raw dataset used by the EDA view.
func NewService(clusters ClusterSource, data region.Repository, maps MapSource, log *logger.Logger) *Service {
	return &Service{
		clusters: clusters,
		data:     data,
		maps:     maps,
		content:  DefaultContent,
		log:      log.Component("report"),
	}
}

// WithCache enables caching of computed views
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// WithContent replaces the static home page content
func (s *Service) WithContent(c Content) *Service {
	s.content = c
	return s
}

// Narratives returns the cluster description table
func (s *Service) Narratives() cluster.Table {
	return s.clusters.Narratives()
}

// cached fills dest from the cache when possible, otherwise runs build and stores
// the result. Cache failures are logged and never fail the view.
func (s *Service) cached(ctx context.Context, key string, dest interface{}, build func() error) error {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, dest)
		if err != nil {
			s.log.Warnw("Report cache read failed", "key", key, "error", err)
		}
		if hit {
			return nil
		}
	}

	if err := build(); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dest); err != nil {
			s.log.Warnw("Report cache write failed", "key", key, "error", err)
		}
	}
	return nil
}
