package spatial

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/geo"
)

// NoDataLabel marks polygons without a matching record
const NoDataLabel = "no data"

// JoinResult is the left join of polygons with one year's assignments
type JoinResult struct {
	Regions []geo.JoinedRegion

	// Unmatched lists record names that matched no polygon; they are not displayed.
	Unmatched []string
}

// Matched counts polygons that received a cluster
func (r JoinResult) Matched() int {
	n := 0
	for _, j := range r.Regions {
		if j.HasData() {
			n++
		}
	}
	return n
}

// Join keeps every polygon in input order and attaches the first assignment whose
// normalized name equals the polygon's. Polygons without a match keep a nil Cluster.
func Join(regions []geo.Region, assignments []cluster.Assignment) JoinResult {
	byKey := make(map[string]int, len(assignments))
	for i, a := range assignments {
		if _, dup := byKey[a.Key()]; !dup {
			byKey[a.Key()] = i
		}
	}

	used := make(map[string]bool, len(regions))
	out := JoinResult{Regions: make([]geo.JoinedRegion, len(regions))}
	for i, r := range regions {
		out.Regions[i] = geo.JoinedRegion{Region: r}
		idx, ok := byKey[r.Key]
		if !ok {
			continue
		}
		a := assignments[idx]
		c := a.Cluster
		out.Regions[i].Cluster = &c
		out.Regions[i].Assignment = &a
		used[r.Key] = true
	}

	for _, a := range assignments {
		if !used[a.Key()] {
			out.Unmatched = append(out.Unmatched, a.Region)
			used[a.Key()] = true
		}
	}
	return out
}

// FeatureCollection renders joined polygons plus one centroid marker per polygon.
// Polygon properties: name, cluster (null without data), title, description, label.
// Marker properties: name, cluster, marker=true, popup "<name> - Cluster <id>".
func FeatureCollection(joined []geo.JoinedRegion, narratives cluster.Table) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, j := range joined {
		f := geojson.NewFeature(j.Geometry)
		f.Properties["name"] = j.Name

		var clusterValue interface{}
		label := NoDataLabel
		popup := fmt.Sprintf("%s - %s", j.Name, NoDataLabel)
		if j.HasData() {
			n := narratives.Lookup(*j.Cluster)
			clusterValue = *j.Cluster
			label = fmt.Sprintf("Cluster %d", *j.Cluster)
			popup = fmt.Sprintf("%s - Cluster %d", j.Name, *j.Cluster)
			f.Properties["title"] = n.Title
			f.Properties["description"] = n.Description
			f.Properties["total_sampah_ton"] = j.Assignment.Features.TotalWasteTon
		}
		f.Properties["cluster"] = clusterValue
		f.Properties["label"] = label
		fc.Append(f)

		m := geojson.NewFeature(j.Centroid)
		m.Properties["name"] = j.Name
		m.Properties["cluster"] = clusterValue
		m.Properties["marker"] = true
		m.Properties["popup"] = popup
		fc.Append(m)
	}
	return fc
}
