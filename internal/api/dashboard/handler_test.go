package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/geo"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/domain/training"
	"sampahkita/internal/ml"
	"sampahkita/internal/services/clustering"
	"sampahkita/internal/services/report"
	"sampahkita/internal/services/spatial"
	"sampahkita/internal/testsupport"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
	"sampahkita/pkg/templates"
)

// mockRepository implements region.Repository for testing
type mockRepository struct {
	records []region.Record
}

func (m *mockRepository) LoadYear(ctx context.Context, year region.Year) ([]region.Record, error) {
	if m.records != nil {
		return m.records, nil
	}
	return []region.Record{
		testsupport.Record("Kab. Bogor", int(year), 0.5, 0.2),
		testsupport.Record("Kota Bandung", int(year), 9.5, 0.1),
		testsupport.Record("Kab. Garut", int(year), 0.3, 9.8),
	}, nil
}

// mockLoader implements clustering.BundleLoader for testing
type mockLoader struct {
	loadFunc func(context.Context, region.Year) (*ml.Bundle, error)
}

func (m *mockLoader) Load(ctx context.Context, year region.Year) (*ml.Bundle, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, year)
	}
	return testsupport.GridBundle(int(year), 3), nil
}

// mockGeometry implements geo.Repository for testing
type mockGeometry struct{}

func (m *mockGeometry) Regions(ctx context.Context) ([]geo.Region, error) {
	return []geo.Region{
		testsupport.Square("Kab. Bogor", 106, -6),
		testsupport.Square("Kota Bandung", 107, -7),
		testsupport.Square("Kab. Cianjur", 106, -7),
	}, nil
}

// mockRuns implements training.Repository for testing
type mockRuns struct {
	runs []training.Run
}

func (m *mockRuns) Store(ctx context.Context, run *training.Run) error { return nil }

func (m *mockRuns) ListByYear(ctx context.Context, year int, limit int) ([]training.Run, error) {
	var out []training.Run
	for _, r := range m.runs {
		if r.Year == year && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuns) Latest(ctx context.Context, year int) (*training.Run, error) {
	return nil, errors.ErrNotFound
}

type options struct {
	records []region.Record
	loader  *mockLoader
	runs    training.Repository
	limiter *RateLimiter
}

func newTestServer(t *testing.T, opts options) http.Handler {
	t.Helper()
	log := logger.NewNop()
	if opts.loader == nil {
		opts.loader = &mockLoader{}
	}

	data := &mockRepository{records: opts.records}
	clusters := clustering.NewService(data, opts.loader, cluster.DefaultTable, nil, log)
	maps := spatial.NewService(&mockGeometry{}, clusters, cluster.DefaultTable, log)
	reports := report.NewService(clusters, data, maps, log)

	h := New(reports, clusters, maps, opts.runs, templates.Get(), opts.limiter, log)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, options{})

	tests := []struct {
		target   string
		code     int
		contains string
	}{
		{"/", http.StatusOK, "Tujuan Aplikasi"},
		{"/eda", http.StatusOK, "Statistik Deskriptif"},
		{"/eda?year=2021", http.StatusOK, "Kota Bandung"},
		{"/eda?year=2019", http.StatusBadRequest, "2019"},
		{"/clustering?year=2022", http.StatusOK, "Pengelolaan Tinggi"},
		{"/map?year=2023", http.StatusOK, "/api/years/2023/geojson"},
		{"/lookup", http.StatusOK, "Pilih Kabupaten"},
		{"/lookup?mode=year&year=2021&region=kab.+bogor", http.StatusOK, "Pengelolaan Rendah"},
		{"/lookup?mode=all&region=Kota+Bandung", http.StatusOK, "2020–2023"},
		{"/lookup?mode=year&year=2021&region=Kab.+Tidak+Ada", http.StatusNotFound, "Kab. Tidak Ada"},
		{"/lookup?mode=semua", http.StatusBadRequest, "mode"},
		{"/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestClustersAPI(t *testing.T) {
	srv := newTestServer(t, options{})

	rec := get(t, srv, "/api/years/2021/clusters")
	require.Equal(t, http.StatusOK, rec.Code)
	var res clustering.YearResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 3, res.K)
	require.Len(t, res.Assignments, 3)
	assert.Equal(t, 1, res.Assignments[1].Cluster)

	rec = get(t, srv, "/api/years/2024/clusters")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/api/years/abc/clusters")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegionAPI(t *testing.T) {
	srv := newTestServer(t, options{})

	rec := get(t, srv, "/api/regions/kota%20bandung?year=2022")
	require.Equal(t, http.StatusOK, rec.Code)
	var one clustering.RegionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&one))
	assert.Equal(t, "Pengelolaan Sedang", one.Narrative.Title)

	rec = get(t, srv, "/api/regions/kota%20bandung")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []clustering.RegionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, len(region.SupportedYears))

	rec = get(t, srv, "/api/regions/Kab.%20Tidak%20Ada")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadFailureIsUnavailable(t *testing.T) {
	loader := &mockLoader{
		loadFunc: func(ctx context.Context, year region.Year) (*ml.Bundle, error) {
			return nil, errors.Join(errors.ErrArtifactLoad, errors.New("no such file"), "year %d", year)
		},
	}
	srv := newTestServer(t, options{loader: loader})

	rec := get(t, srv, "/api/years/2021/clusters")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Error, "load failure")
	assert.Contains(t, body.Error, "2021")
	assert.Equal(t, "load_failure", body.Code)

	rec = get(t, srv, "/clustering?year=2021")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, srv, "/eda?year=2021")
	assert.Equal(t, http.StatusOK, rec.Code, "the data view does not need artifacts")
}

func TestGeoJSONAPI(t *testing.T) {
	rec := get(t, newTestServer(t, options{}), "/api/years/2020/geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 6, "one polygon and one marker per region")
}

func TestMiscAPI(t *testing.T) {
	srv := newTestServer(t, options{})

	rec := get(t, srv, "/api/years")
	assert.JSONEq(t, `{"years":[2020,2021,2022,2023]}`, rec.Body.String())

	rec = get(t, srv, "/api/narratives")
	var narratives []cluster.Narrative
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&narratives))
	assert.Len(t, narratives, 3)

	rec = get(t, srv, "/api/years/2021/regions")
	assert.Contains(t, rec.Body.String(), "Kab. Garut")

	rec = get(t, srv, "/api/years/2021/records")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stats"`)
}

func TestRegionsAPIIsSortedAndDistinct(t *testing.T) {
	srv := newTestServer(t, options{records: []region.Record{
		testsupport.Record("Kota Bandung", 2021, 9.5, 0.1),
		testsupport.Record("Kab. Garut", 2021, 0.3, 9.8),
		testsupport.Record("KOTA BANDUNG ", 2021, 9.4, 0.2),
		testsupport.Record("Kab. Bogor", 2021, 0.5, 0.2),
	}})

	rec := get(t, srv, "/api/years/2021/regions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"year":2021,"regions":["Kab. Bogor","Kab. Garut","Kota Bandung"]}`, rec.Body.String())
}

func TestTrainingRunsAPI(t *testing.T) {
	rec := get(t, newTestServer(t, options{}), "/api/training-runs?year=2021")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "registry_disabled", body.Code)

	runs := &mockRuns{runs: []training.Run{{Year: 2021, K: 3}, {Year: 0, Pooled: true, K: 3}}}
	srv := newTestServer(t, options{runs: runs})

	rec = get(t, srv, "/api/training-runs?year=2021")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []training.Run
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, 2021, got[0].Year)

	rec = get(t, srv, "/api/training-runs?year=0")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/training-runs?year=1999").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/training-runs").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/training-runs?year=2021&limit=0").Code)
}

func TestExports(t *testing.T) {
	srv := newTestServer(t, options{})

	tests := []struct {
		target      string
		contentType string
	}{
		{"/api/years/2021/chart/bar.html", "text/html; charset=utf-8"},
		{"/api/years/2021/chart/scatter.html", "text/html; charset=utf-8"},
		{"/api/years/2021/chart/bar.png", "image/png"},
		{"/api/years/2021/chart/scatter.png", "image/png"},
		{"/api/years/2021/export.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.NotZero(t, rec.Body.Len())
		})
	}

	rec := get(t, srv, "/api/years/2019/export.xlsx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, options{limiter: NewRateLimiter(0.001, 2)})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(t, srv, "/api/years").Code)
	}
	rec := get(t, srv, "/api/years")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get(t, srv, "/").Code, "pages are not rate limited")

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per client")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errors.NewValidationError("year", "bad", "x"), http.StatusBadRequest},
		{errors.Wrap(errors.ErrUnsupportedYear, "2019"), http.StatusBadRequest},
		{errors.Wrap(errors.ErrNotFound, "region"), http.StatusNotFound},
		{errors.Wrap(errors.ErrDataLoad, "year 2020"), http.StatusServiceUnavailable},
		{errors.Wrap(errors.ErrGeometryLoad, "geo"), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusFor(tt.err), tt.err.Error())
	}
}
