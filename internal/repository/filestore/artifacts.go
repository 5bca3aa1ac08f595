package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/internal/ml"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// PooledYear addresses the bundle fitted over every year at once
const PooledYear = 0

// ArtifactStore reads and writes fitted bundles under a models root:
//
//	<root>/model2021/scaler_2021.json
//	<root>/model2021/pca_2021.json
//	<root>/model2021/kmeans_2021.json
//	<root>/pooled/{scaler,pca,kmeans}_pooled.json
type ArtifactStore struct {
	root string
	log  *logger.Logger
}

// NewArtifactStore creates a store rooted at dir
func NewArtifactStore(dir string, log *logger.Logger) *ArtifactStore {
	return &ArtifactStore{
		root: dir,
		log:  log.Component("artifact_store"),
	}
}

// Dir returns the directory holding year's artifacts
func (s *ArtifactStore) Dir(year int) string {
	if year == PooledYear {
		return filepath.Join(s.root, "pooled")
	}
	return filepath.Join(s.root, fmt.Sprintf("model%d", year))
}

// FileName returns the artifact file name for kind and year
func FileName(kind string, year int) string {
	if year == PooledYear {
		return kind + "_pooled.json"
	}
	return fmt.Sprintf("%s_%d.json", kind, year)
}

// Load reads the three artifacts of year, checks they agree with the serving
// feature set and stamps the bundle with a fingerprint of the raw bytes.
func (s *ArtifactStore) Load(ctx context.Context, year region.Year) (*ml.Bundle, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "load artifacts %d", year)
	}

	start := time.Now()
	b, err := s.load(ctx, int(year))
	metrics.RecordBundleLoad(int(year), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Loaded artifact bundle",
		"year", int(year),
		"k", b.K(),
		"fingerprint", b.Fingerprint[:12],
		"duration", time.Since(start),
	)
	return b, nil
}

// LoadPooled reads the bundle written by a pooled training run
func (s *ArtifactStore) LoadPooled(ctx context.Context) (*ml.Bundle, error) {
	return s.load(ctx, PooledYear)
}

func (s *ArtifactStore) load(ctx context.Context, year int) (*ml.Bundle, error) {
	dir := s.Dir(year)
	files := make(map[string][]byte, len(ml.ArtifactKinds))
	hash := sha256.New()

	for _, kind := range ml.ArtifactKinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, FileName(kind, year))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Join(errors.ErrArtifactLoad, err, "year %d: read %s", year, path)
		}
		files[kind] = data
		hash.Write(data)
	}

	b, err := ml.DecodeBundle(files)
	if err != nil {
		return nil, errors.Join(errors.ErrArtifactLoad, err, "year %d: decode %s", year, dir)
	}
	if b.Year != year {
		return nil, errors.Join(errors.ErrArtifactLoad, errors.ErrInvalidInput, "year %d: artifacts in %s were fitted for %d", year, dir, b.Year)
	}
	if err := b.Validate(region.FeatureNames); err != nil {
		return nil, errors.Join(errors.ErrArtifactLoad, err, "year %d: validate %s", year, dir)
	}

	b.Fingerprint = hex.EncodeToString(hash.Sum(nil))
	return b, nil
}

// Save writes b under its year directory and returns the directory and fingerprint.
// Each file is replaced atomically; a reader never sees a half-written artifact.
func (s *ArtifactStore) Save(ctx context.Context, b *ml.Bundle) (string, string, error) {
	if err := b.Validate(region.FeatureNames); err != nil {
		return "", "", errors.Wrap(err, "save bundle")
	}
	files, err := b.Encode()
	if err != nil {
		return "", "", err
	}

	dir := s.Dir(b.Year)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrapf(err, "create %s", dir)
	}

	hash := sha256.New()
	for _, kind := range ml.ArtifactKinds {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		data := files[kind]
		path := filepath.Join(dir, FileName(kind, b.Year))
		if err := writeFileAtomic(path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return "", "", err
		}
		hash.Write(data)
	}

	b.Fingerprint = hex.EncodeToString(hash.Sum(nil))
	s.log.Infow("Saved artifact bundle", "year", b.Year, "dir", dir, "fingerprint", b.Fingerprint[:12])
	return dir, b.Fingerprint, nil
}
