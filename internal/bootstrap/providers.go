package bootstrap

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	chclient "sampahkita/internal/adapters/clickhouse"
	"sampahkita/internal/adapters/config"
	errnoop "sampahkita/internal/adapters/errors/noop"
	"sampahkita/internal/adapters/errors/sentry"
	pgclient "sampahkita/internal/adapters/postgres"
	redisclient "sampahkita/internal/adapters/redis"
	"sampahkita/internal/api"
	"sampahkita/internal/api/dashboard"
	"sampahkita/internal/api/health"
	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/metrics"
	chrepo "sampahkita/internal/repository/clickhouse"
	"sampahkita/internal/repository/filestore"
	pgrepo "sampahkita/internal/repository/postgres"
	redisrepo "sampahkita/internal/repository/redis"
	"sampahkita/internal/services/clustering"
	"sampahkita/internal/services/report"
	"sampahkita/internal/services/spatial"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
	"sampahkita/pkg/templates"
)

// schemaTimeout bounds the CREATE TABLE IF NOT EXISTS calls at startup
const schemaTimeout = 15 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg
	c.Lifecycle.WithHTTPTimeout(cfg.HTTP.ShutdownTimeout)

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, c.version(), cfg.App.Env)

	// Initialize error tracker
	c.ErrorTracker = provideErrorTracker(cfg, c.version(), c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the optional data stores. A store without a
// configured host is skipped; a configured store that cannot be reached is fatal.
func (c *Container) MustInitInfrastructure() {
	var err error

	if c.Config.Postgres.Enabled() {
		c.Log.Info("Connecting to PostgreSQL...")
		c.PG, err = pgclient.NewClient(c.Config.Postgres)
		if err != nil {
			c.Log.Fatalf("failed to connect postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL connected")
	}

	if c.Config.ClickHouse.Enabled() {
		c.Log.Info("Connecting to ClickHouse...")
		c.CH, err = chclient.NewClient(c.Config.ClickHouse)
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("✓ ClickHouse connected")
	}

	if c.Config.Redis.Enabled() {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(c.Config.Redis)
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	}
}

// ========================================
// Phase 3: Repositories
// ========================================

// MustInitRepositories creates the file stores and the optional database repositories
func (c *Container) MustInitRepositories() {
	c.Repos.Datasets = filestore.NewDatasetStore(c.Config.Data, c.Log)
	c.Repos.Artifacts = filestore.NewArtifactStore(c.Config.Model.Dir, c.Log)
	c.Repos.Geometry = filestore.NewGeometryStore(c.Config.Data, c.Log)

	ctx, cancel := context.WithTimeout(c.Context, schemaTimeout)
	defer cancel()

	if c.PG != nil {
		runs := pgrepo.NewTrainingRunRepository(c.PG.DB())
		if err := runs.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to prepare training_runs: %v", err)
		}
		c.Repos.TrainingRun = runs
	}

	if c.CH != nil {
		assignments := chrepo.NewAssignmentRepository(c.CH.Conn(), chrepo.DefaultAssignmentsTable)
		if err := assignments.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to prepare %s: %v", chrepo.DefaultAssignmentsTable, err)
		}
		c.Repos.Assignments = assignments
	}

	if c.Redis != nil {
		c.Repos.ReportCache = redisrepo.NewReportCache(c.Redis, c.Config.Redis.TTL)
	}

	c.Log.Infow("✓ Repositories initialized",
		"data_dir", c.Config.Data.Dir,
		"model_dir", c.Config.Model.Dir,
		"training_runs", c.Repos.TrainingRun != nil,
		"assignment_export", c.Repos.Assignments != nil,
		"report_cache", c.Repos.ReportCache != nil,
	)
}

// ========================================
// Phase 4: Services
// ========================================

// MustInitServices wires the clustering, spatial and report services
func (c *Container) MustInitServices() {
	c.Services.Datasets = clustering.NewDatasetCache(c.Repos.Datasets)
	c.Services.Bundles = clustering.NewBundleCache(provideBundleLoader(c.Config, c.Repos.Artifacts, c.Log), c.Log)

	narratives := cluster.DefaultTable
	c.Services.Clustering = clustering.NewService(
		c.Services.Datasets,
		c.Services.Bundles,
		narratives,
		c.ErrorTracker,
		c.Log,
	)
	c.Services.Spatial = spatial.NewService(c.Repos.Geometry, c.Services.Clustering, narratives, c.Log)

	c.Services.Report = report.NewService(c.Services.Clustering, c.Services.Datasets, c.Services.Spatial, c.Log)
	if c.Repos.ReportCache != nil {
		c.Services.Report.WithCache(c.Repos.ReportCache)
	}

	metrics.RegisterCustomCollector(metrics.NewCustomCollector(c.Log, c.Services.Bundles, c.pgDB()))

	c.Log.Info("✓ Services initialized")
}

// ========================================
// Phase 5: Application Layer
// ========================================

// MustInitApplication builds the HTTP handlers and server
func (c *Container) MustInitApplication() {
	c.Application.HealthHandler = health.New(
		c.Log,
		c.Services.Bundles,
		c.Config.App.Name,
		c.version(),
		c.healthComponents()...,
	)

	var limiter *dashboard.RateLimiter
	if c.Config.RateLimit.Enabled {
		limiter = dashboard.NewRateLimiter(c.Config.RateLimit.RPS, c.Config.RateLimit.Burst)
	}

	c.Application.DashboardHandler = dashboard.New(
		c.Services.Report,
		c.Services.Clustering,
		c.Services.Spatial,
		c.Repos.TrainingRun,
		templates.Get(),
		limiter,
		c.Log,
	)

	c.Application.HTTPServer = api.NewServer(api.ServerConfig{
		Port:         c.Config.HTTP.Port,
		ServiceName:  c.Config.App.Name,
		Version:      c.version(),
		ReadTimeout:  c.Config.HTTP.ReadTimeout,
		WriteTimeout: c.Config.HTTP.WriteTimeout,
	}, c.Application.HealthHandler, c.Application.DashboardHandler, c.Log)

	c.Log.Info("✓ Application initialized")
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, release string, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, release)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideBundleLoader(cfg *config.Config, artifacts *filestore.ArtifactStore, log *logger.Logger) clustering.BundleLoader {
	if cfg.Model.Pooled {
		log.Info("Serving the pooled bundle for every year")
		return clustering.PooledLoader{Store: artifacts}
	}
	return artifacts
}

// healthComponents lists only the stores that are configured
func (c *Container) healthComponents() []health.Component {
	var components []health.Component
	if c.PG != nil {
		components = append(components, c.PG)
	}
	if c.CH != nil {
		components = append(components, c.CH)
	}
	if c.Redis != nil {
		components = append(components, c.Redis)
	}
	return components
}

func (c *Container) pgDB() *sqlx.DB {
	if c.PG == nil {
		return nil
	}
	return c.PG.DB()
}

func (c *Container) version() string {
	if c.Version != "" {
		return c.Version
	}
	return c.Config.App.Version
}
