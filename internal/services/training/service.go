package training

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	domain "sampahkita/internal/domain/training"
	"sampahkita/internal/metrics"
	"sampahkita/internal/ml"
	"sampahkita/internal/repository/filestore"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// DefaultOutput is the augmented table written next to the models
const DefaultOutput = "dataset_cluster_final.csv"

// rankColumn orders clusters by mean total_sampah_ton
const rankColumn = 1

// runNamespace derives run IDs from bundle fingerprints
var runNamespace = uuid.MustParse("6f1c2d3e-8a4b-4c5d-9e6f-7a8b9c0d1e2f")

// Options configures one trainer invocation
type Options struct {
	Input     string
	Output    string
	Pooled    bool
	SplitData bool
	KMeans    ml.KMeansOptions
}

// Summary lists what a run produced
type Summary struct {
	Rows    int
	Skipped int
	Runs    []domain.Run
	Files   []string
}

// BundleWriter persists fitted bundles
type BundleWriter interface {
	Save(ctx context.Context, b *ml.Bundle) (string, string, error)
}

// Service fits artifact bundles from the historical dataset
type Service struct {
	artifacts BundleWriter
	data      config.DataConfig
	runs      domain.Repository
	exporter  domain.AssignmentExporter
	log       *logger.Logger
}

// NewService creates a trainer. runs and exporter are optional.
func NewService(artifacts BundleWriter, data config.DataConfig, runs domain.Repository, exporter domain.AssignmentExporter, log *logger.Logger) *Service {
	return &Service{
		artifacts: artifacts,
		data:      data,
		runs:      runs,
		exporter:  exporter,
		log:       log.Component("trainer"),
	}
}

// Run reads the concatenated dataset and fits one bundle per supported year, or a
// single pooled bundle. The same input and seed always produce the same artifacts.
func (s *Service) Run(ctx context.Context, opts Options) (summary *Summary, err error) {
	defer func() { metrics.RecordTrainingRun(opts.Pooled, err) }()

	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	if opts.KMeans.K < 1 {
		return nil, errors.NewValidationError("k", "must be at least 1", opts.KMeans.K)
	}

	records, err := readInput(opts.Input)
	if err != nil {
		return nil, err
	}
	summary = &Summary{Rows: len(records)}

	var augmented []cluster.Assignment
	if opts.Pooled {
		augmented, err = s.fitPooled(ctx, records, opts, summary)
	} else {
		augmented, err = s.fitPerYear(ctx, records, opts, summary)
	}
	if err != nil {
		return nil, err
	}

	if err := filestore.WriteAugmentedFile(opts.Output, augmented); err != nil {
		return nil, errors.Wrapf(err, "write %s", opts.Output)
	}
	summary.Files = append(summary.Files, opts.Output)

	s.log.Infow("Training finished",
		"input", opts.Input,
		"rows", summary.Rows,
		"bundles", len(summary.Runs),
		"pooled", opts.Pooled,
	)
	return summary, nil
}

func readInput(path string) ([]region.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(errors.ErrDataLoad, err, "open %s", path)
	}
	defer f.Close()

	records, err := filestore.ReadTable(f, 0)
	if err != nil {
		return nil, errors.Join(errors.ErrDataLoad, err, "parse %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s has no rows", path)
	}
	return records, nil
}

func (s *Service) fitPerYear(ctx context.Context, records []region.Record, opts Options, summary *Summary) ([]cluster.Assignment, error) {
	byYear := make(map[region.Year][]region.Record)
	for _, r := range records {
		if !r.Year.Valid() {
			summary.Skipped++
			continue
		}
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	if summary.Skipped > 0 {
		s.log.Warnw("Rows outside the supported years were skipped", "rows", summary.Skipped)
	}

	var augmented []cluster.Assignment
	for _, year := range region.SupportedYears {
		rows := byYear[year]
		if len(rows) == 0 {
			s.log.Warnw("No rows for year, bundle not written", "year", int(year))
			continue
		}

		assignments, err := s.fit(ctx, int(year), rows, opts, summary)
		if err != nil {
			return nil, errors.Wrapf(err, "year %d", year)
		}
		augmented = append(augmented, assignments...)

		if opts.SplitData {
			path := s.data.YearFile(int(year))
			if err := filestore.WriteYearFile(path, rows); err != nil {
				return nil, err
			}
			summary.Files = append(summary.Files, path)
		}
	}
	if len(augmented) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no rows in any supported year")
	}
	return augmented, nil
}

func (s *Service) fitPooled(ctx context.Context, records []region.Record, opts Options, summary *Summary) ([]cluster.Assignment, error) {
	return s.fit(ctx, filestore.PooledYear, records, opts, summary)
}

// fit trains, saves and records one bundle over rows
func (s *Service) fit(ctx context.Context, year int, rows []region.Record, opts Options, summary *Summary) ([]cluster.Assignment, error) {
	fitOpts := ml.DefaultFitOptions(year, region.FeatureNames)
	fitOpts.KMeans = opts.KMeans
	fitOpts.RankColumn = rankColumn
	res, err := ml.Fit(region.Matrix(rows), fitOpts)
	if err != nil {
		return nil, err
	}

	dir, fingerprint, err := s.artifacts.Save(ctx, res.Bundle)
	if err != nil {
		return nil, err
	}

	assignments := make([]cluster.Assignment, len(rows))
	exported := make([]domain.AssignmentRow, len(rows))
	run := domain.Run{
		ID:          uuid.NewSHA1(runNamespace, []byte(fingerprint)),
		Year:        year,
		Pooled:      year == filestore.PooledYear,
		Rows:        len(rows),
		K:           res.Bundle.K(),
		Seed:        opts.KMeans.Seed,
		Inertia:     res.Bundle.Partitioner.Inertia,
		PC1Variance: res.Bundle.Reducer.ExplainedVarianceRatio[0],
		PC2Variance: res.Bundle.Reducer.ExplainedVarianceRatio[1],
		Fingerprint: fingerprint,
		ArtifactDir: dir,
		CreatedAt:   time.Now().UTC(),
	}
	for i, r := range rows {
		p := res.Projected[i]
		assignments[i] = cluster.Assignment{Record: r, PC1: p[0], PC2: p[1], Cluster: res.Labels[i]}
		exported[i] = domain.AssignmentRow{
			RunID:    run.ID,
			Year:     int(r.Year),
			Region:   r.Region,
			Features: r.Features.Vector(),
			PC1:      p[0],
			PC2:      p[1],
			Cluster:  res.Labels[i],
		}
	}

	s.log.Infow("Fitted bundle",
		"year", year,
		"rows", len(rows),
		"k", run.K,
		"inertia", run.Inertia,
		"dir", dir,
		"fingerprint", fingerprint[:12],
	)

	if err := s.record(ctx, &run, exported); err != nil {
		return nil, err
	}
	summary.Runs = append(summary.Runs, run)
	for _, kind := range ml.ArtifactKinds {
		summary.Files = append(summary.Files, filepath.Join(dir, filestore.FileName(kind, year)))
	}
	return assignments, nil
}

// record stores the run and exports its rows. A run whose fingerprint is already
// the latest for its year is neither stored nor exported again.
func (s *Service) record(ctx context.Context, run *domain.Run, rows []domain.AssignmentRow) error {
	if s.runs != nil {
		latest, err := s.runs.Latest(ctx, run.Year)
		switch {
		case err == nil && latest.Fingerprint == run.Fingerprint:
			s.log.Infow("Bundle unchanged since last run", "year", run.Year, "run_id", latest.ID)
			return nil
		case err != nil && !errors.Is(err, errors.ErrNotFound):
			return errors.Wrap(err, "look up latest run")
		}
		if err := s.runs.Store(ctx, run); err != nil {
			return err
		}
	}

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, rows); err != nil {
			return errors.Wrapf(err, "export run %s", run.ID)
		}
	}
	return nil
}
