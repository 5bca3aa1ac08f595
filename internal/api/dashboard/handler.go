package dashboard

import (
	"context"
	"net/http"

	"github.com/paulmach/orb/geojson"

	"sampahkita/internal/domain/region"
	"sampahkita/internal/domain/training"
	"sampahkita/internal/services/report"
	"sampahkita/pkg/logger"
	"sampahkita/pkg/templates"
)

// GeoJSONSource renders a year's choropleth as a FeatureCollection
type GeoJSONSource interface {
	GeoJSON(ctx context.Context, year region.Year) (*geojson.FeatureCollection, error)
}

// Handler serves the dashboard pages, the JSON API and the file exports
type Handler struct {
	reports  *report.Service
	clusters report.ClusterSource
	maps     GeoJSONSource
	runs     training.Repository
	pages    *templates.Registry
	limiter  *RateLimiter
	log      *logger.Logger
}

// New creates the dashboard handler. runs and limiter may be nil.
func New(
	reports *report.Service,
	clusters report.ClusterSource,
	maps GeoJSONSource,
	runs training.Repository,
	pages *templates.Registry,
	limiter *RateLimiter,
	log *logger.Logger,
) *Handler {
	return &Handler{
		reports:  reports,
		clusters: clusters,
		maps:     maps,
		runs:     runs,
		pages:    pages,
		limiter:  limiter,
		log:      log.Component("dashboard"),
	}
}

// Register mounts every dashboard route on mux
func (h *Handler) Register(mux *http.ServeMux) {
	h.page(mux, "GET /{$}", h.handleHome)
	h.page(mux, "GET /eda", h.handleEDA)
	h.page(mux, "GET /clustering", h.handleClustering)
	h.page(mux, "GET /map", h.handleMap)
	h.page(mux, "GET /lookup", h.handleLookup)

	h.api(mux, "GET /api/years", h.handleYears)
	h.api(mux, "GET /api/years/{year}/records", h.handleRecords)
	h.api(mux, "GET /api/years/{year}/clusters", h.handleClusters)
	h.api(mux, "GET /api/years/{year}/geojson", h.handleGeoJSON)
	h.api(mux, "GET /api/years/{year}/regions", h.handleRegions)
	h.api(mux, "GET /api/regions/{name}", h.handleRegion)
	h.api(mux, "GET /api/narratives", h.handleNarratives)
	h.api(mux, "GET /api/training-runs", h.handleTrainingRuns)

	h.api(mux, "GET /api/years/{year}/chart/bar.html", h.handleBarHTML)
	h.api(mux, "GET /api/years/{year}/chart/scatter.html", h.handleScatterHTML)
	h.api(mux, "GET /api/years/{year}/chart/bar.png", h.handleBarPNG)
	h.api(mux, "GET /api/years/{year}/chart/scatter.png", h.handleScatterPNG)
	h.api(mux, "GET /api/years/{year}/export.xlsx", h.handleWorkbook)
}

// page registers an HTML route with request metrics
func (h *Handler) page(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, Instrument(pattern, fn))
}

// api registers a JSON or file route with request metrics and rate limiting
func (h *Handler) api(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	var next http.Handler = fn
	if h.limiter != nil {
		next = h.limiter.Middleware(pattern, next)
	}
	mux.Handle(pattern, Instrument(pattern, next))
}
