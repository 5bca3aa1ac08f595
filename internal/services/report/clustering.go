package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"

	"sampahkita/internal/adapters/charts"
	"sampahkita/internal/adapters/excel"
	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	rediscache "sampahkita/internal/repository/redis"
)

// ClusterSummary is one cluster with its narrative and member count
type ClusterSummary struct {
	Narrative cluster.Narrative `json:"narrative"`
	Size      int               `json:"size"`
}

// ClusteringView is the projected table of a year sorted by cluster
type ClusteringView struct {
	Year        region.Year          `json:"year"`
	K           int                  `json:"k"`
	Fingerprint string               `json:"fingerprint"`
	Rows        []cluster.Assignment `json:"rows"`
	Clusters    []ClusterSummary     `json:"clusters"`
}

// Clustering returns the year's assignments sorted by cluster with per-cluster totals
func (s *Service) Clustering(ctx context.Context, year region.Year) (*ClusteringView, error) {
	res, err := s.clusters.Year(ctx, year)
	if err != nil {
		return nil, err
	}

	view := &ClusteringView{}
	key := rediscache.Key("clustering", int(year), res.Fingerprint, recordsDigest(res.Assignments))
	err = s.cached(ctx, key, view, func() error {
		sizes := cluster.Sizes(res.Assignments)
		ids := make([]int, 0, len(sizes))
		for id := range sizes {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		narratives := s.clusters.Narratives()
		*view = ClusteringView{
			Year:        year,
			K:           res.K,
			Fingerprint: res.Fingerprint,
			Rows:        res.Sorted(),
		}
		for _, id := range ids {
			view.Clusters = append(view.Clusters, ClusterSummary{
				Narrative: narratives.Lookup(id),
				Size:      sizes[id],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// recordsDigest fingerprints the records behind a year's assignments, so the
// cached view follows dataset edits made without retraining.
func recordsDigest(as []cluster.Assignment) string {
	hash := sha256.New()
	for _, a := range as {
		hash.Write([]byte(a.Region))
		hash.Write([]byte{0})
		hash.Write([]byte(strconv.Itoa(int(a.Year))))
		for _, v := range a.Features.Vector() {
			hash.Write([]byte{0})
			hash.Write([]byte(strconv.FormatFloat(v, 'g', -1, 64)))
		}
		hash.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// ProjectionScatter is the PCA scatter chart of a year coloured by cluster
func (s *Service) ProjectionScatter(ctx context.Context, year region.Year) (charts.Scatter, error) {
	res, err := s.clusters.Year(ctx, year)
	if err != nil {
		return charts.Scatter{}, err
	}

	narratives := s.clusters.Narratives()
	sc := charts.Scatter{
		Title:  fmt.Sprintf("Visualisasi PCA + K-Means (%d)", year),
		XLabel: "pc1",
		YLabel: "pc2",
		Points: make([]charts.Point, len(res.Assignments)),
		GroupName: func(id int) string {
			return fmt.Sprintf("Cluster %d - %s", id, narratives.Lookup(id).Title)
		},
	}
	for i, a := range res.Assignments {
		sc.Points[i] = charts.Point{Name: a.Region, X: a.PC1, Y: a.PC2, Group: a.Cluster}
	}
	return sc, nil
}

// WriteWorkbook writes the year's assignments as an xlsx workbook
func (s *Service) WriteWorkbook(ctx context.Context, w io.Writer, year region.Year) error {
	res, err := s.clusters.Year(ctx, year)
	if err != nil {
		return err
	}
	return excel.WriteYear(w, year, res.Assignments, s.clusters.Narratives())
}
