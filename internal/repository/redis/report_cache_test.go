package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "sampahkita/internal/adapters/redis"
	"sampahkita/internal/testsupport"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "sampahkita:report:eda:2021:abc", Key("eda", 2021, "abc"))
	assert.Equal(t, "sampahkita:report:clustering:2021:abc:def", Key("clustering", 2021, "abc", "def"))
}

func TestReportCacheRoundTrip(t *testing.T) {
	client := testsupport.NewRedisClient(t, testsupport.RedisConfigFromEnv(t))
	cache := NewReportCache(redisadapter.Wrap(client), time.Minute)
	ctx := context.Background()

	type summary struct {
		Rows  int     `json:"rows"`
		Total float64 `json:"total"`
	}

	var got summary
	found, err := cache.Get(ctx, Key("eda", 2021, "fp1"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, Key("eda", 2021, "fp1"), summary{Rows: 27, Total: 1234.5}))

	found, err = cache.Get(ctx, Key("eda", 2021, "fp1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, summary{Rows: 27, Total: 1234.5}, got)

	found, err = cache.Get(ctx, Key("eda", 2021, "fp2"), &got)
	require.NoError(t, err)
	assert.False(t, found, "a new fingerprint misses")

	n, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
