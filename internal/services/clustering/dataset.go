package clustering

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/pkg/errors"
)

// DatasetCache memoises per-year tables read from a region.Repository.
// The data files are static for the life of the process.
type DatasetCache struct {
	repo region.Repository

	mu     sync.RWMutex
	tables map[region.Year][]region.Record
	group  singleflight.Group
}

// NewDatasetCache wraps repo with a per-year memo
func NewDatasetCache(repo region.Repository) *DatasetCache {
	return &DatasetCache{
		repo:   repo,
		tables: make(map[region.Year][]region.Record),
	}
}

// LoadYear implements region.Repository. Callers must not modify the returned slice.
func (c *DatasetCache) LoadYear(ctx context.Context, year region.Year) ([]region.Record, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "data %d", year)
	}

	c.mu.RLock()
	records, ok := c.tables[year]
	c.mu.RUnlock()
	metrics.RecordCacheLookup("dataset", ok)
	if ok {
		return records, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(year.String(), func() (interface{}, error) {
		records, err := c.repo.LoadYear(loadCtx, year)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[year] = records
		c.mu.Unlock()
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "data %d", year)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]region.Record), nil
	}
}
