package report

import (
	"context"
	"fmt"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
)

// MapView is the choropleth page of a year. Polygons are fetched by the browser
// from GeoJSONURL.
type MapView struct {
	Year       region.Year         `json:"year"`
	GeoJSONURL string              `json:"geojson_url"`
	Legend     []cluster.Narrative `json:"legend"`
	Polygons   int                 `json:"polygons"`
	Matched    int                 `json:"matched"`
	Unmatched  []string            `json:"unmatched"`
}

// Map returns the map page of a year
func (s *Service) Map(ctx context.Context, year region.Year) (*MapView, error) {
	m, err := s.maps.Map(ctx, year)
	if err != nil {
		return nil, err
	}
	return &MapView{
		Year:       year,
		GeoJSONURL: fmt.Sprintf("/api/years/%d/geojson", year),
		Legend:     s.clusters.Narratives().List(),
		Polygons:   len(m.Regions),
		Matched:    m.Matched(),
		Unmatched:  m.Unmatched,
	}, nil
}
