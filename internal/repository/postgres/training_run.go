package postgres

import (
	"context"
	"database/sql"
	"time"

	"sampahkita/internal/domain/training"
	"sampahkita/internal/metrics"
	"sampahkita/pkg/errors"
)

// Compile-time check
var _ training.Repository = (*TrainingRunRepository)(nil)

const trainingRunsSchema = `
	CREATE TABLE IF NOT EXISTS training_runs (
		id                 UUID PRIMARY KEY,
		year               INTEGER NOT NULL,
		pooled             BOOLEAN NOT NULL DEFAULT FALSE,
		row_count          INTEGER NOT NULL,
		k                  INTEGER NOT NULL,
		seed               BIGINT NOT NULL,
		inertia            DOUBLE PRECISION NOT NULL,
		pc1_variance_ratio DOUBLE PRECISION NOT NULL,
		pc2_variance_ratio DOUBLE PRECISION NOT NULL,
		fingerprint        TEXT NOT NULL,
		artifact_dir       TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS training_runs_year_created_idx ON training_runs (year, created_at DESC);`

// TrainingRunRepository implements training.Repository using sqlx
type TrainingRunRepository struct {
	db DBTX
}

// NewTrainingRunRepository creates a repository over *sqlx.DB or *sqlx.Tx
func NewTrainingRunRepository(db DBTX) *TrainingRunRepository {
	return &TrainingRunRepository{db: db}
}

// EnsureSchema creates the training_runs table when missing
func (r *TrainingRunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, trainingRunsSchema)
	return errors.Wrap(err, "create training_runs")
}

// Store inserts a run. Re-storing the same ID is a no-op.
func (r *TrainingRunRepository) Store(ctx context.Context, run *training.Run) error {
	query := `
		INSERT INTO training_runs (
			id, year, pooled, row_count, k, seed, inertia,
			pc1_variance_ratio, pc2_variance_ratio, fingerprint, artifact_dir, created_at
		) VALUES (
			:id, :year, :pooled, :row_count, :k, :seed, :inertia,
			:pc1_variance_ratio, :pc2_variance_ratio, :fingerprint, :artifact_dir, :created_at
		)
		ON CONFLICT (id) DO NOTHING`

	start := time.Now()
	_, err := r.db.NamedExecContext(ctx, query, run)
	metrics.RecordDBQuery("postgres", "training_runs.insert", time.Since(start), err)
	return errors.Wrapf(err, "store training run %s", run.ID)
}

// ListByYear returns the newest runs for a year, newest first
func (r *TrainingRunRepository) ListByYear(ctx context.Context, year int, limit int) ([]training.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []training.Run
	query := `SELECT * FROM training_runs WHERE year = $1 ORDER BY created_at DESC LIMIT $2`

	start := time.Now()
	err := r.db.SelectContext(ctx, &runs, query, year, limit)
	metrics.RecordDBQuery("postgres", "training_runs.list", time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "list training runs for %d", year)
	}

	return runs, nil
}

// Latest returns the newest run for a year
func (r *TrainingRunRepository) Latest(ctx context.Context, year int) (*training.Run, error) {
	var run training.Run
	query := `SELECT * FROM training_runs WHERE year = $1 ORDER BY created_at DESC LIMIT 1`

	start := time.Now()
	err := r.db.GetContext(ctx, &run, query, year)
	metrics.RecordDBQuery("postgres", "training_runs.latest", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "no training run for %d", year)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "latest training run for %d", year)
	}

	return &run, nil
}
