package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sampahkita", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 3, cfg.Model.Clusters)
	assert.Equal(t, int64(42), cfg.Model.Seed)
	assert.Equal(t, "KABKOT", cfg.Data.NameProperty)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MODEL_CLUSTERS", "4")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("DATA_DIR", "/srv/data")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 4, cfg.Model.Clusters)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.False(t, cfg.Postgres.Enabled())
	assert.Equal(t, filepath.Join("/srv/data", "data2021.csv"), cfg.Data.YearFile(2021))
}

func TestLoadRejectsZeroClusters(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MODEL_CLUSTERS", "0")

	_, err := Load()
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
