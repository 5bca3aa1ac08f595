package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Artifact bundle metrics
	BundleLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_bundle_loads_total",
			Help: "Total number of artifact bundle loads from disk",
		},
		[]string{"year", "status"}, // status: success|error
	)

	BundleLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sampahkita_bundle_load_duration_seconds",
			Help:    "Artifact bundle load duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"year"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_cache_lookups_total",
			Help: "Total number of in-process and Redis cache lookups",
		},
		[]string{"cache", "result"}, // result: hit|miss|error
	)

	// Pipeline metrics
	PipelineTransforms = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_pipeline_transforms_total",
			Help: "Total number of year tables run through the frozen pipeline",
		},
		[]string{"year", "status"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sampahkita_pipeline_duration_seconds",
			Help:    "Duration of loading and transforming one year",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"year"},
	)

	CoercedValues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_coerced_values_total",
			Help: "Feature values replaced with zero because they were missing or non-numeric",
		},
		[]string{"year", "column"},
	)

	UnmatchedRegions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sampahkita_unmatched_regions",
			Help: "Polygons without a matching record after the spatial join",
		},
		[]string{"year"},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sampahkita_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_http_rate_limited_total",
			Help: "Requests rejected by the API rate limiter",
		},
		[]string{"route"},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sampahkita_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"database", "operation"},
	)

	// Trainer metrics
	TrainingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampahkita_training_runs_total",
			Help: "Total number of trainer fits",
		},
		[]string{"mode", "status"}, // mode: per_year|pooled
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(BundleLoads)
		prometheus.MustRegister(BundleLoadDuration)
		prometheus.MustRegister(CacheLookups)

		prometheus.MustRegister(PipelineTransforms)
		prometheus.MustRegister(PipelineDuration)
		prometheus.MustRegister(CoercedValues)
		prometheus.MustRegister(UnmatchedRegions)

		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(RateLimited)

		prometheus.MustRegister(DBQueries)
		prometheus.MustRegister(DBQueryDuration)

		prometheus.MustRegister(TrainingRuns)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBundleLoad records one disk load of a year's artifacts
func RecordBundleLoad(year int, duration time.Duration, err error) {
	y := strconv.Itoa(year)
	BundleLoads.WithLabelValues(y, status(err)).Inc()
	BundleLoadDuration.WithLabelValues(y).Observe(duration.Seconds())
}

// RecordCacheLookup records a hit or miss against a named cache
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordCacheError records a cache backend failure
func RecordCacheError(cache string) {
	CacheLookups.WithLabelValues(cache, "error").Inc()
}

// RecordTransform records one pass of a year's table through the pipeline
func RecordTransform(year int, duration time.Duration, err error) {
	y := strconv.Itoa(year)
	PipelineTransforms.WithLabelValues(y, status(err)).Inc()
	PipelineDuration.WithLabelValues(y).Observe(duration.Seconds())
}

// RecordCoerced counts a zero-coerced feature value
func RecordCoerced(year int, column string) {
	CoercedValues.WithLabelValues(strconv.Itoa(year), column).Inc()
}

// RecordUnmatched sets the number of polygons without data for a year
func RecordUnmatched(year int, count int) {
	UnmatchedRegions.WithLabelValues(strconv.Itoa(year)).Set(float64(count))
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(route string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRateLimited counts a rejected request
func RecordRateLimited(route string) {
	RateLimited.WithLabelValues(route).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	DBQueries.WithLabelValues(database, operation, status(err)).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordTrainingRun records a trainer fit
func RecordTrainingRun(pooled bool, err error) {
	mode := "per_year"
	if pooled {
		mode = "pooled"
	}
	TrainingRuns.WithLabelValues(mode, status(err)).Inc()
}
