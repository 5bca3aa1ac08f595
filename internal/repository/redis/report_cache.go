package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisadapter "sampahkita/internal/adapters/redis"
	"sampahkita/internal/metrics"
	"sampahkita/pkg/errors"
)

const keyPrefix = "sampahkita:report:"

// ReportCache stores computed views keyed by view, year and the fingerprints of
// their inputs. A retrained bundle or a changed dataset yields a new key, so
// stale entries are never read.
type ReportCache struct {
	client *redisadapter.Client
	ttl    time.Duration
}

// NewReportCache creates a cache whose entries expire after ttl
func NewReportCache(client *redisadapter.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Key builds the cache key for one view of one year from its input fingerprints
func Key(view string, year int, fingerprints ...string) string {
	return fmt.Sprintf("%s%s:%d:%s", keyPrefix, view, year, strings.Join(fingerprints, ":"))
}

// Get decodes the entry into dest and reports whether it was present
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := c.client.Get(ctx, key, dest)
	if errors.Is(err, goredis.Nil) {
		metrics.RecordCacheLookup("report", false)
		return false, nil
	}
	if err != nil {
		metrics.RecordCacheError("report")
		return false, errors.Wrapf(err, "get %s", key)
	}
	metrics.RecordCacheLookup("report", true)
	return true, nil
}

// Set stores value under key
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) error {
	if err := c.client.Set(ctx, key, value, c.ttl); err != nil {
		metrics.RecordCacheError("report")
		return errors.Wrapf(err, "set %s", key)
	}
	return nil
}

// Purge removes every report entry and returns how many were deleted
func (c *ReportCache) Purge(ctx context.Context) (int, error) {
	n, err := c.client.DeleteByPrefix(ctx, keyPrefix)
	return n, errors.Wrap(err, "purge report cache")
}
