package training

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/domain/region"
	domain "sampahkita/internal/domain/training"
	"sampahkita/internal/ml"
	"sampahkita/internal/repository/filestore"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// memoryRuns implements training.Repository for testing
type memoryRuns struct {
	mu     sync.Mutex
	stored []domain.Run
}

func (m *memoryRuns) Store(ctx context.Context, run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, *run)
	return nil
}

func (m *memoryRuns) ListByYear(ctx context.Context, year int, limit int) ([]domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Run
	for _, r := range m.stored {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRuns) Latest(ctx context.Context, year int) (*domain.Run, error) {
	runs, _ := m.ListByYear(ctx, year, 0)
	if len(runs) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "run for %d", year)
	}
	latest := runs[len(runs)-1]
	return &latest, nil
}

// mockExporter implements training.AssignmentExporter for testing
type mockExporter struct {
	exportFunc func(context.Context, []domain.AssignmentRow) error
	rows       []domain.AssignmentRow
	calls      int
}

func (m *mockExporter) Export(ctx context.Context, rows []domain.AssignmentRow) error {
	m.calls++
	if m.exportFunc != nil {
		return m.exportFunc(ctx, rows)
	}
	m.rows = append(m.rows, rows...)
	return nil
}

// groupBase holds three well separated profiles ordered by total_sampah_ton
var groupBase = [][]float64{
	{100, 10, 1, 2, 3, 3, 0.10, 3.3, 3.3},
	{900, 90, 9, 18, 27, 27, 0.20, 5.0, 6.0},
	{5000, 700, 60, 140, 210, 200, 0.30, 7.0, 9.0},
}

// trainingRecords builds nine regions per year, three per profile
func trainingRecords(years ...region.Year) []region.Record {
	var out []region.Record
	for _, y := range years {
		for i := 0; i < 9; i++ {
			g := i / 3
			v := make([]float64, len(groupBase[g]))
			for j, b := range groupBase[g] {
				v[j] = b * (1 + 0.001*float64(i%3) + 0.0001*float64(y-2020))
			}
			out = append(out, region.Record{
				Region:   fmt.Sprintf("Kab. G%dR%d", g, i%3),
				Year:     y,
				Features: region.FeaturesFromVector(v),
			})
		}
	}
	return out
}

type fixture struct {
	dir       string
	input     string
	output    string
	data      config.DataConfig
	artifacts *filestore.ArtifactStore
	runs      *memoryRuns
	exporter  *mockExporter
	svc       *Service
}

func newFixture(t *testing.T, records []region.Record) *fixture {
	t.Helper()
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, filestore.WriteTable(&buf, records))
	input := filepath.Join(dir, "dataset.csv")
	require.NoError(t, os.WriteFile(input, buf.Bytes(), 0o644))

	f := &fixture{
		dir:       dir,
		input:     input,
		output:    filepath.Join(dir, "out", DefaultOutput),
		data:      config.DataConfig{Dir: filepath.Join(dir, "data"), FilePattern: "data%d.csv"},
		artifacts: filestore.NewArtifactStore(filepath.Join(dir, "models"), logger.NewNop()),
		runs:      &memoryRuns{},
		exporter:  &mockExporter{},
	}
	f.svc = NewService(f.artifacts, f.data, f.runs, f.exporter, logger.NewNop())
	return f
}

func (f *fixture) options() Options {
	return Options{
		Input:     f.input,
		Output:    f.output,
		SplitData: true,
		KMeans:    ml.DefaultKMeansOptions(),
	}
}

func TestRunPerYear(t *testing.T) {
	f := newFixture(t, trainingRecords(region.SupportedYears...))

	summary, err := f.svc.Run(context.Background(), f.options())
	require.NoError(t, err)

	assert.Equal(t, 36, summary.Rows)
	assert.Zero(t, summary.Skipped)
	require.Len(t, summary.Runs, len(region.SupportedYears))
	assert.Contains(t, summary.Files, f.output)

	for i, year := range region.SupportedYears {
		run := summary.Runs[i]
		assert.Equal(t, int(year), run.Year)
		assert.False(t, run.Pooled)
		assert.Equal(t, 9, run.Rows)
		assert.Equal(t, 3, run.K)
		assert.Equal(t, int64(42), run.Seed)

		b, err := f.artifacts.Load(context.Background(), year)
		require.NoError(t, err, "bundle %d must load back", year)
		assert.Equal(t, run.Fingerprint, b.Fingerprint)

		records, err := filestore.NewDatasetStore(f.data, logger.NewNop()).LoadYear(context.Background(), year)
		require.NoError(t, err)
		assert.Len(t, records, 9)
	}

	assert.Len(t, f.runs.stored, len(region.SupportedYears))
	require.Len(t, f.exporter.rows, 36)
	for _, row := range f.exporter.rows {
		assert.Len(t, row.Features, region.NumFeatures)
		group := int(row.Region[len("Kab. G")] - '0')
		assert.Equal(t, group, row.Cluster, "clusters are ranked by total waste: %s", row.Region)
	}

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kabupaten;tahun;jumlah_penduduk")
	assert.Equal(t, 37, bytes.Count(data, []byte("\n")))
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t, trainingRecords(2021, 2022))

	first, err := f.svc.Run(context.Background(), f.options())
	require.NoError(t, err)
	second, err := f.svc.Run(context.Background(), f.options())
	require.NoError(t, err)

	require.Len(t, second.Runs, len(first.Runs))
	for i := range first.Runs {
		assert.Equal(t, first.Runs[i].Fingerprint, second.Runs[i].Fingerprint)
		assert.Equal(t, first.Runs[i].ID, second.Runs[i].ID)
	}
	assert.Len(t, f.runs.stored, 2, "unchanged bundles are not stored twice")
	assert.Equal(t, 2, f.exporter.calls, "unchanged bundles are not exported twice")
}

func TestRunPooled(t *testing.T) {
	f := newFixture(t, trainingRecords(2020, 2023))
	opts := f.options()
	opts.Pooled = true

	summary, err := f.svc.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, summary.Runs, 1)

	run := summary.Runs[0]
	assert.True(t, run.Pooled)
	assert.Equal(t, filestore.PooledYear, run.Year)
	assert.Equal(t, 18, run.Rows)
	assert.Equal(t, filepath.Join(f.dir, "models", "pooled"), run.ArtifactDir)

	b, err := f.artifacts.LoadPooled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, run.Fingerprint, b.Fingerprint)

	_, err = os.Stat(f.data.YearFile(2020))
	assert.True(t, os.IsNotExist(err), "pooled runs do not split the data")
}

func TestRunWithoutSplit(t *testing.T) {
	f := newFixture(t, trainingRecords(2022))
	opts := f.options()
	opts.SplitData = false

	summary, err := f.svc.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, summary.Runs, 1)

	_, err = os.Stat(f.data.YearFile(2022))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, summary.Files, f.data.YearFile(2022))
}

func TestRunSkipsUnsupportedYears(t *testing.T) {
	records := append(trainingRecords(2021), trainingRecords(2019)...)
	for i := range records {
		if records[i].Year == 2019 {
			records[i].Region += " lama"
		}
	}
	f := newFixture(t, records)

	summary, err := f.svc.Run(context.Background(), f.options())
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Skipped)
	require.Len(t, summary.Runs, 1)
	assert.Equal(t, 2021, summary.Runs[0].Year)
}

func TestRunWithoutOptionalSinks(t *testing.T) {
	f := newFixture(t, trainingRecords(2020))
	svc := NewService(f.artifacts, f.data, nil, nil, logger.NewNop())

	summary, err := svc.Run(context.Background(), f.options())
	require.NoError(t, err)
	assert.Len(t, summary.Runs, 1)
}

func TestRunExportFailure(t *testing.T) {
	f := newFixture(t, trainingRecords(2020))
	f.exporter.exportFunc = func(ctx context.Context, rows []domain.AssignmentRow) error {
		return errors.Wrap(errors.ErrUnavailable, "clickhouse down")
	}

	_, err := f.svc.Run(context.Background(), f.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestRunInvalidInput(t *testing.T) {
	f := newFixture(t, trainingRecords(2020))

	opts := f.options()
	opts.Input = filepath.Join(f.dir, "missing.csv")
	_, err := f.svc.Run(context.Background(), opts)
	assert.True(t, errors.Is(err, errors.ErrDataLoad))

	opts = f.options()
	opts.KMeans.K = 0
	_, err = f.svc.Run(context.Background(), opts)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	f = newFixture(t, trainingRecords(2018))
	_, err = f.svc.Run(context.Background(), f.options())
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
