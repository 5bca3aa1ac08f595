package bootstrap

import (
	"context"
	"sync"

	chclient "sampahkita/internal/adapters/clickhouse"
	"sampahkita/internal/adapters/config"
	pgclient "sampahkita/internal/adapters/postgres"
	redisclient "sampahkita/internal/adapters/redis"
	"sampahkita/internal/api"
	"sampahkita/internal/api/dashboard"
	"sampahkita/internal/api/health"
	"sampahkita/internal/domain/training"
	chrepo "sampahkita/internal/repository/clickhouse"
	"sampahkita/internal/repository/filestore"
	redisrepo "sampahkita/internal/repository/redis"
	"sampahkita/internal/services/clustering"
	"sampahkita/internal/services/report"
	"sampahkita/internal/services/spatial"
	trainingsvc "sampahkita/internal/services/training"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker
	Version      string

	// Infrastructure Layer (optional data stores, nil when not configured)
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	// Repositories
	Repos *Repositories

	// Services
	Services *Services

	// Application Layer
	Application *Application

	// Lifecycle management
	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups the file stores and the optional database repositories
type Repositories struct {
	Datasets    *filestore.DatasetStore
	Artifacts   *filestore.ArtifactStore
	Geometry    *filestore.GeometryStore
	TrainingRun training.Repository          // nil without Postgres
	Assignments *chrepo.AssignmentRepository // nil without ClickHouse
	ReportCache *redisrepo.ReportCache       // nil without Redis
}

// Services groups the domain services
type Services struct {
	Datasets   *clustering.DatasetCache
	Bundles    *clustering.BundleCache
	Clustering *clustering.Service
	Spatial    *spatial.Service
	Report     *report.Service
	Training   *trainingsvc.Service
}

// Application groups application layer components
type Application struct {
	HTTPServer       *api.Server
	HealthHandler    *health.Handler
	DashboardHandler *dashboard.Handler
}

// NewContainer creates a new dependency container
func NewContainer(version string) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Version:     version,
		Repos:       &Repositories{},
		Services:    &Services{},
		Application: &Application{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes every component of the dashboard server
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.MustInitServices()
	c.MustInitApplication()
}

// MustInitTrainer initializes only what the offline trainer needs.
// override may adjust the loaded configuration before any store is created.
func (c *Container) MustInitTrainer(override func(*config.Config)) {
	c.MustInitConfig()
	if override != nil {
		override(c.Config)
	}
	c.MustInitInfrastructure()
	c.MustInitRepositories()
	c.Services.Training = trainingsvc.NewService(
		c.Repos.Artifacts,
		c.Config.Data,
		c.Repos.TrainingRun,
		c.assignmentExporter(),
		c.Log,
	)
}

// Start warms the caches and starts the HTTP server
func (c *Container) Start() error {
	c.Log.Info("Starting dashboard...")

	if c.Config.Model.WarmOnStart {
		if err := c.Services.Bundles.Warm(c.Context); err != nil {
			// Years that failed stay unavailable until a request retries them
			c.Log.Warnw("Some artifact bundles failed to load", "error", err)
		}
		c.Log.Infow("✓ Artifact bundles warmed", "loaded", len(c.Services.Bundles.Loaded()))
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Info("✓ Dashboard operational")
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")
	c.Cancel()

	c.Lifecycle.Shutdown(
		c.WG,
		c.Application.HTTPServer,
		c.PG,
		c.CH,
		c.Redis,
		c.ErrorTracker,
		c.Log,
	)
}

// Close releases clients without an HTTP server, used by the trainer
func (c *Container) Close() {
	c.Cancel()
	c.Lifecycle.flushErrorTracker(c.ErrorTracker, context.Background(), c.Log)
	c.Lifecycle.closeDatabases(c.PG, c.CH, c.Redis, c.Log)
	_ = logger.Sync()
}

func (c *Container) assignmentExporter() training.AssignmentExporter {
	if c.Repos.Assignments == nil {
		return nil
	}
	return c.Repos.Assignments
}
