package filestore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/domain/geo"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// GeometryStore reads the administrative boundary FeatureCollection once per process
type GeometryStore struct {
	path         string
	nameProperty string
	log          *logger.Logger

	mu      sync.Mutex
	regions []geo.Region
}

// NewGeometryStore creates a store for cfg.GeoJSONPath
func NewGeometryStore(cfg config.DataConfig, log *logger.Logger) *GeometryStore {
	return &GeometryStore{
		path:         cfg.GeoJSONPath,
		nameProperty: cfg.NameProperty,
		log:          log.Component("geometry_store"),
	}
}

// Regions returns the polygons in file order. A failed read is not remembered.
func (s *GeometryStore) Regions(ctx context.Context) ([]geo.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.regions != nil {
		return s.regions, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(errors.ErrGeometryLoad, err, "read %s", s.path)
	}
	regions, err := ParseRegions(data, s.nameProperty)
	if err != nil {
		return nil, errors.Join(errors.ErrGeometryLoad, err, "parse %s", s.path)
	}

	s.log.Infow("Loaded region boundaries", "path", s.path, "regions", len(regions))
	s.regions = regions
	return regions, nil
}

// ParseRegions decodes a FeatureCollection of (Multi)Polygons keyed by nameProperty
func ParseRegions(data []byte, nameProperty string) ([]geo.Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode feature collection")
	}

	regions := make([]geo.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "feature %d: no geometry", i)
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, errors.Wrapf(errors.ErrInvalidInput, "feature %d: geometry %s is not a polygon", i, f.Geometry.GeoJSONType())
		}

		raw, ok := f.Properties[nameProperty]
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "feature %d: missing %q property", i, nameProperty)
		}
		name := strings.TrimSpace(fmt.Sprint(raw))
		regions = append(regions, geo.NewRegion(name, f.Geometry, map[string]interface{}(f.Properties)))
	}
	return regions, nil
}
