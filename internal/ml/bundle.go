package ml

import (
	"sampahkita/pkg/errors"
)

// Bundle is the immutable (scaler, reducer, partitioner) triple fitted for one year
type Bundle struct {
	Year        int
	Scaler      *StandardScaler
	Reducer     *PCA
	Partitioner *KMeans

	// Fingerprint identifies the persisted artifact bytes; it changes on retraining.
	Fingerprint string
}

// Projection is the pipeline output for one feature vector
type Projection struct {
	PC1     float64
	PC2     float64
	Cluster int
}

// Validate checks the three artifacts agree with each other and with featureNames
func (b *Bundle) Validate(featureNames []string) error {
	if b == nil || b.Scaler == nil || b.Reducer == nil || b.Partitioner == nil {
		return errors.Wrap(errors.ErrNotFitted, "bundle is incomplete")
	}
	if err := b.Scaler.validate(); err != nil {
		return err
	}
	if err := b.Reducer.validate(); err != nil {
		return err
	}
	if err := b.Partitioner.validate(); err != nil {
		return err
	}

	if b.Scaler.Width() != len(featureNames) {
		return errors.Wrapf(errors.ErrFeatureMismatch, "scaler fitted on %d features, pipeline uses %d", b.Scaler.Width(), len(featureNames))
	}
	if b.Reducer.Width() != b.Scaler.Width() {
		return errors.Wrapf(errors.ErrFeatureMismatch, "reducer fitted on %d features, scaler on %d", b.Reducer.Width(), b.Scaler.Width())
	}
	if n := len(b.Scaler.FeatureNames); n > 0 {
		if n != len(featureNames) {
			return errors.Wrapf(errors.ErrFeatureMismatch, "bundle names %d features, pipeline uses %d", n, len(featureNames))
		}
		for i, name := range featureNames {
			if b.Scaler.FeatureNames[i] != name {
				return errors.Wrapf(errors.ErrFeatureMismatch, "feature %d is %q in bundle, %q in pipeline", i, b.Scaler.FeatureNames[i], name)
			}
		}
	}
	return nil
}

// K returns the partitioner's cluster count
func (b *Bundle) K() int {
	return b.Partitioner.K()
}

// Standardize applies the frozen scaler
func (b *Bundle) Standardize(x []float64) ([]float64, error) {
	return b.Scaler.Transform(x)
}

// Predict standardizes x, projects it and assigns the nearest centroid in
// projected space, the same space the partitioner was fitted in.
func (b *Bundle) Predict(x []float64) (Projection, error) {
	scaled, err := b.Scaler.Transform(x)
	if err != nil {
		return Projection{}, errors.Wrap(err, "standardize")
	}
	pc, err := b.Reducer.Transform(scaled)
	if err != nil {
		return Projection{}, errors.Wrap(err, "project")
	}
	cluster, err := b.Partitioner.Predict(pc[:])
	if err != nil {
		return Projection{}, errors.Wrap(err, "assign cluster")
	}
	return Projection{PC1: pc[0], PC2: pc[1], Cluster: cluster}, nil
}
