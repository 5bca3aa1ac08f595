package charts

import (
	"fmt"
	"sort"
)

// Bar is a single-series categorical chart
type Bar struct {
	Title      string
	SeriesName string
	XLabel     string
	YLabel     string
	Labels     []string
	Values     []float64
}

// Point is one scatter marker
type Point struct {
	Name  string
	X     float64
	Y     float64
	Group int
}

// Scatter is a grouped 2-D scatter chart, one series per group
type Scatter struct {
	Title     string
	XLabel    string
	YLabel    string
	Points    []Point
	GroupName func(group int) string
}

func (s Scatter) groupName(g int) string {
	if s.GroupName != nil {
		return s.GroupName(g)
	}
	return fmt.Sprintf("Cluster %d", g)
}

// groups returns points per group with group ids ascending
func (s Scatter) groups() ([]int, map[int][]Point) {
	byGroup := make(map[int][]Point)
	for _, p := range s.Points {
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}
	ids := make([]int, 0, len(byGroup))
	for g := range byGroup {
		ids = append(ids, g)
	}
	sort.Ints(ids)
	return ids, byGroup
}

func (b Bar) validate() error {
	if len(b.Labels) != len(b.Values) {
		return fmt.Errorf("bar chart has %d labels for %d values", len(b.Labels), len(b.Values))
	}
	return nil
}
