package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/repository/filestore"
	"sampahkita/internal/services/clustering"
	"sampahkita/pkg/logger"
)

func TestProvideBundleLoader(t *testing.T) {
	artifacts := filestore.NewArtifactStore(t.TempDir(), logger.NewNop())

	cfg := &config.Config{}
	assert.Same(t, artifacts, provideBundleLoader(cfg, artifacts, logger.NewNop()))

	cfg.Model.Pooled = true
	assert.Equal(t, clustering.PooledLoader{Store: artifacts}, provideBundleLoader(cfg, artifacts, logger.NewNop()))
}

func TestProvideErrorTrackerDisabled(t *testing.T) {
	cfg := &config.Config{}
	assert.NotNil(t, provideErrorTracker(cfg, "test", logger.NewNop()))

	cfg.ErrorTracking.Enabled = true
	assert.NotNil(t, provideErrorTracker(cfg, "test", logger.NewNop()), "missing DSN falls back to no-op")
}

func TestContainerWithoutStores(t *testing.T) {
	c := NewContainer("1.2.3")
	c.Config = &config.Config{}

	assert.Empty(t, c.healthComponents())
	assert.Nil(t, c.pgDB())
	assert.Nil(t, c.assignmentExporter())
	assert.Equal(t, "1.2.3", c.version())

	c.Version = ""
	c.Config.App.Version = "dev"
	assert.Equal(t, "dev", c.version())
}
