package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sampahkita/internal/api/dashboard"
	"sampahkita/internal/api/health"
	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/geo"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/internal/ml"
	"sampahkita/internal/services/clustering"
	"sampahkita/internal/services/report"
	"sampahkita/internal/services/spatial"
	"sampahkita/internal/testsupport"
	"sampahkita/pkg/logger"
	"sampahkita/pkg/templates"
)

type stubData struct{}

func (stubData) LoadYear(ctx context.Context, year region.Year) ([]region.Record, error) {
	return []region.Record{testsupport.Record("Kab. Bogor", int(year), 0, 0)}, nil
}

type stubGeometry struct{}

func (stubGeometry) Regions(ctx context.Context) ([]geo.Region, error) {
	return []geo.Region{testsupport.Square("Kab. Bogor", 106, -6)}, nil
}

type gridLoader struct{}

func (gridLoader) Load(ctx context.Context, year region.Year) (*ml.Bundle, error) {
	return testsupport.GridBundle(int(year), 3), nil
}

func TestServerRoutes(t *testing.T) {
	metrics.Init()
	log := logger.NewNop()

	bundles := clustering.NewBundleCache(gridLoader{}, log)
	clusters := clustering.NewService(stubData{}, bundles, cluster.DefaultTable, nil, log)
	maps := spatial.NewService(stubGeometry{}, clusters, cluster.DefaultTable, log)
	reports := report.NewService(clusters, stubData{}, maps, log)

	srv := NewServer(
		ServerConfig{Port: 18080, ServiceName: "sampahkita", Version: "test"},
		health.New(log, bundles, "sampahkita", "test"),
		dashboard.New(reports, clusters, maps, nil, templates.Get(), nil, log),
		log,
	)

	for _, path := range []string{"/health", "/ready", "/live", "/", "/api/years/2021/clusters", "/metrics"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "sampahkita_http_requests_total")
}
