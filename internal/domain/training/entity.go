package training

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run describes one fitted artifact bundle produced by the trainer
type Run struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Year        int       `db:"year" json:"year"` // 0 for a pooled run
	Pooled      bool      `db:"pooled" json:"pooled"`
	Rows        int       `db:"row_count" json:"rows"`
	K           int       `db:"k" json:"k"`
	Seed        int64     `db:"seed" json:"seed"`
	Inertia     float64   `db:"inertia" json:"inertia"`
	PC1Variance float64   `db:"pc1_variance_ratio" json:"pc1_variance_ratio"`
	PC2Variance float64   `db:"pc2_variance_ratio" json:"pc2_variance_ratio"`
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	ArtifactDir string    `db:"artifact_dir" json:"artifact_dir"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Repository stores and lists training runs
type Repository interface {
	Store(ctx context.Context, run *Run) error
	ListByYear(ctx context.Context, year int, limit int) ([]Run, error)
	Latest(ctx context.Context, year int) (*Run, error)
}

// AssignmentRow is one augmented row exported for analytics
type AssignmentRow struct {
	RunID    uuid.UUID
	Year     int
	Region   string
	Features []float64
	PC1      float64
	PC2      float64
	Cluster  int
}

// AssignmentExporter writes the augmented table of a run to an analytics store
type AssignmentExporter interface {
	Export(ctx context.Context, rows []AssignmentRow) error
}
