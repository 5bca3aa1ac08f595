package filestore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/domain/cluster"
	"sampahkita/internal/domain/region"
	"sampahkita/internal/metrics"
	"sampahkita/pkg/errors"
	"sampahkita/pkg/logger"
)

// Separator is the field separator of every dataset file
const Separator = ';'

// DatasetStore reads the per-year data tables from disk
type DatasetStore struct {
	cfg config.DataConfig
	log *logger.Logger
}

// NewDatasetStore creates a store rooted at cfg.Dir
func NewDatasetStore(cfg config.DataConfig, log *logger.Logger) *DatasetStore {
	return &DatasetStore{
		cfg: cfg,
		log: log.Component("dataset_store"),
	}
}

// LoadYear reads <dir>/data<year>.csv. Rows whose feature cells were missing or
// non-numeric are kept with zeros and the offending columns listed in Coerced.
func (s *DatasetStore) LoadYear(ctx context.Context, year region.Year) ([]region.Record, error) {
	if !year.Valid() {
		return nil, errors.Wrapf(errors.ErrUnsupportedYear, "load data %d", year)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.cfg.YearFile(int(year))
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(errors.ErrDataLoad, err, "year %d: open %s", year, path)
	}
	defer f.Close()

	records, err := ReadTable(f, year)
	if err != nil {
		return nil, errors.Join(errors.ErrDataLoad, err, "year %d: parse %s", year, path)
	}

	coerced := 0
	for _, r := range records {
		for _, col := range r.Coerced {
			metrics.RecordCoerced(int(year), col)
			coerced++
		}
	}
	if coerced > 0 {
		s.log.Warnw("Coerced non-numeric feature values to zero",
			"year", int(year),
			"path", path,
			"values", coerced,
		)
	}

	s.log.Debugw("Loaded year data", "year", int(year), "rows", len(records))
	return records, nil
}

// ReadTable parses a semicolon separated, decimal-comma table. A tahun column, when
// present, overrides year per row; year 0 with no tahun column is an error.
func ReadTable(r io.Reader, year region.Year) ([]region.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty table")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[normalizeColumn(h)] = i
	}

	nameCol, ok := index[region.RegionColumn]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "missing %q column", region.RegionColumn)
	}
	yearCol, hasYear := index[region.YearColumn]
	if !hasYear && year == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "missing %q column", region.YearColumn)
	}

	var records []region.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read line %d", line)
		}
		if blank(row) {
			continue
		}

		rec := region.Record{
			Region: strings.TrimSpace(cell(row, nameCol)),
			Year:   year,
		}
		if hasYear {
			y, ok := ParseNumber(cell(row, yearCol))
			if !ok {
				return nil, errors.Wrapf(errors.ErrInvalidInput, "line %d: bad %s %q", line, region.YearColumn, cell(row, yearCol))
			}
			rec.Year = region.Year(int(y))
		}

		for _, name := range region.FeatureNames {
			col, ok := index[name]
			v, parsed := 0.0, false
			if ok {
				v, parsed = ParseNumber(cell(row, col))
			}
			if !parsed {
				v = 0
				rec.Coerced = append(rec.Coerced, name)
			}
			rec.Features.Set(name, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseNumber parses a decimal-comma number such as "1.234,5", "0,75" or
// "5.427.068". A single dot without a comma is read as a decimal point.
// It reports false for empty or non-numeric text.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// FormatNumber renders v with a decimal comma, the inverse of ParseNumber
func FormatNumber(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).String(), ".", ",", 1)
}

// WriteTable writes records in the per-year data file format
func WriteTable(w io.Writer, records []region.Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	header := append([]string{region.RegionColumn, region.YearColumn}, region.FeatureNames...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row, r.Region, r.Year.String())
		for _, v := range r.Features.Vector() {
			row = append(row, FormatNumber(v))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write %s", r.Region)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYearFile writes one year's records to path, creating parent directories
func WriteYearFile(path string, records []region.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteTable(w, records)
	})
}

// WriteAugmented writes the training table with pc1, pc2 and cluster appended.
// Numbers use a decimal point, like the historical export consumers expect.
func WriteAugmented(w io.Writer, rows []cluster.Assignment) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	header := append([]string{region.RegionColumn, region.YearColumn}, region.FeatureNames...)
	header = append(header, "cluster", "pc1", "pc2")
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range rows {
		row := make([]string, 0, len(header))
		row = append(row, r.Record.Region, r.Record.Year.String())
		for _, v := range r.Record.Features.Vector() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		row = append(row,
			strconv.Itoa(r.Cluster),
			strconv.FormatFloat(r.PC1, 'f', -1, 64),
			strconv.FormatFloat(r.PC2, 'f', -1, 64),
		)
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write %s", r.Record.Region)
		}
	}
	cw.Flush()
	return cw.Error()
}

func normalizeColumn(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// writeFileAtomic writes through a temp file in the target directory and renames it
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename to %s", path)
	}
	return nil
}

// WriteAugmentedFile writes the augmented training table to path
func WriteAugmentedFile(path string, rows []cluster.Assignment) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteAugmented(w, rows)
	})
}
