package clustering

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/internal/ml"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// BundleLoader reads a year's fitted artifacts
type BundleLoader interface {
	Load(ctx context.Context, year region.Year) (*ml.Bundle, error)
}

// BundleCache memoises bundles by year for the process lifetime.
// Concurrent first loads of one year share a single disk read. Failures are
// returned to every waiter but not remembered.
type BundleCache struct {
	loader BundleLoader
	log    *logger.Logger

	mu      sync.RWMutex
	bundles map[region.Year]*ml.Bundle
	group   singleflight.Group
}

// NewBundleCache wraps loader with a per-year memo
func NewBundleCache(loader BundleLoader, log *logger.Logger) *BundleCache {
	return &BundleCache{
		loader:  loader,
		log:     log.Component("bundle_cache"),
		bundles: make(map[region.Year]*ml.Bundle),
	}
}

// Load returns the cached bundle for year, reading it on first use
func (c *BundleCache) Load(ctx context.Context, year region.Year) (*ml.Bundle, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "bundle %d", year)
	}

	c.mu.RLock()
	b, ok := c.bundles[year]
	c.mu.RUnlock()
	metrics.RecordCacheLookup("bundle", ok)
	if ok {
		return b, nil
	}

	// The shared read outlives any one caller: a cancelled request stops
	// waiting, but the load continues for the callers still joined to it.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(year.String(), func() (interface{}, error) {
		c.mu.RLock()
		b, ok := c.bundles[year]
		c.mu.RUnlock()
		if ok {
			return b, nil
		}

		b, err := c.loader.Load(loadCtx, year)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.bundles[year] = b
		c.mu.Unlock()
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "bundle %d", year)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ml.Bundle), nil
	}
}

// Warm loads every supported year. Failures are logged and collected; the
// years that loaded stay cached.
func (c *BundleCache) Warm(ctx context.Context) error {
	var errs errors.MultiError
	for _, year := range region.SupportedYears {
		start := time.Now()
		b, err := c.Load(ctx, year)
		if err != nil {
			c.log.Errorw("Failed to preload artifact bundle", "year", int(year), "error", err)
			errs.Add(err)
			continue
		}
		c.log.Infow("Preloaded artifact bundle", "year", int(year), "k", b.K(), "duration", time.Since(start))
	}
	return errs.ToError()
}

// Loaded returns year -> fingerprint for every resident bundle
func (c *BundleCache) Loaded() map[int]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[int]string, len(c.bundles))
	for y, b := range c.bundles {
		out[int(y)] = b.Fingerprint
	}
	return out
}

// PooledStore reads the single bundle fitted over every year
type PooledStore interface {
	LoadPooled(ctx context.Context) (*ml.Bundle, error)
}

// PooledLoader serves the pooled bundle for every supported year
type PooledLoader struct {
	Store PooledStore
}

// Load implements BundleLoader
func (p PooledLoader) Load(ctx context.Context, year region.Year) (*ml.Bundle, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "bundle %d", year)
	}
	return p.Store.LoadPooled(ctx)
}
