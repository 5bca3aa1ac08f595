package geo

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
)

// Region is a named administrative polygon
type Region struct {
	Name       string
	Key        string
	Geometry   orb.Geometry
	Centroid   orb.Point
	Properties map[string]interface{}
}

// NewRegion builds a Region with its normalized key and area centroid
func NewRegion(name string, geometry orb.Geometry, props map[string]interface{}) Region {
	r := Region{
		Name:       name,
		Key:        region.NormalizeName(name),
		Geometry:   geometry,
		Properties: props,
	}
	if geometry != nil {
		r.Centroid, _ = planar.CentroidArea(geometry)
	}
	return r
}

// JoinedRegion is a polygon after the left join with cluster assignments.
// Cluster is nil when no record matched the polygon's name.
type JoinedRegion struct {
	Region
	Cluster    *int
	Assignment *cluster.Assignment
}

// HasData reports whether the polygon matched a record
func (j JoinedRegion) HasData() bool {
	return j.Cluster != nil
}

// Repository provides the static polygon table
type Repository interface {
	Regions(ctx context.Context) ([]Region, error)
}
