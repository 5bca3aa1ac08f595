package clustering

import (
	"time"

	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/internal/ml"
	"sampahkita/pkg/errors"
)

// Pipeline applies a frozen bundle to a year's records
type Pipeline struct{}

// NewPipeline creates a pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Transform standardises, projects and assigns every record. It is a pure
// function of its inputs: the same records and bundle give the same output.
func (p *Pipeline) Transform(records []region.Record, b *ml.Bundle) ([]cluster.Assignment, error) {
	start := time.Now()
	out, err := p.transform(records, b)
	if b != nil {
		metrics.RecordTransform(b.Year, time.Since(start), err)
	}
	return out, err
}

func (p *Pipeline) transform(records []region.Record, b *ml.Bundle) ([]cluster.Assignment, error) {
	if err := b.Validate(region.FeatureNames); err != nil {
		return nil, err
	}

	out := make([]cluster.Assignment, len(records))
	for i, r := range records {
		proj, err := b.Predict(r.Features.Vector())
		if err != nil {
			return nil, errors.Wrapf(err, "transform %q", r.Region)
		}
		out[i] = cluster.Assignment{
			Record:  r,
			PC1:     proj.PC1,
			PC2:     proj.PC2,
			Cluster: proj.Cluster,
		}
	}
	return out, nil
}
