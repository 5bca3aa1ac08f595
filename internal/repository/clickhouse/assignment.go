package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"sampahkita/internal/domain/training"
	"sampahkita/internal/metrics"
	"sampahkita/pkg/errors"
)

// Compile-time check
var _ training.AssignmentExporter = (*AssignmentRepository)(nil)

// DefaultAssignmentsTable receives one row per region and training run
const DefaultAssignmentsTable = "cluster_assignments"

// AssignmentRepository writes augmented training rows for analytics
type AssignmentRepository struct {
	conn  driver.Conn
	table string
}

// NewAssignmentRepository creates a repository writing to table (DefaultAssignmentsTable when empty)
func NewAssignmentRepository(conn driver.Conn, table string) *AssignmentRepository {
	if table == "" {
		table = DefaultAssignmentsTable
	}
	return &AssignmentRepository{conn: conn, table: table}
}

// EnsureSchema creates the assignments table when missing
func (r *AssignmentRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id      UUID,
			year        UInt16,
			region      String,
			features    Array(Float64),
			pc1         Float64,
			pc2         Float64,
			cluster     UInt8,
			exported_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (year, run_id, region)`, r.table)

	return errors.Wrapf(r.conn.Exec(ctx, query), "create %s", r.table)
}

// Export appends rows in one batch
func (r *AssignmentRepository) Export(ctx context.Context, rows []training.AssignmentRow) error {
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	err := r.export(ctx, rows)
	metrics.RecordDBQuery("clickhouse", "cluster_assignments.insert", time.Since(start), err)
	return err
}

func (r *AssignmentRepository) export(ctx context.Context, rows []training.AssignmentRow) error {
	batch, err := r.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			run_id, year, region, features, pc1, pc2, cluster, exported_at
		)`, r.table))
	if err != nil {
		return errors.Wrap(err, "prepare assignment batch")
	}

	now := time.Now().UTC()
	for _, row := range rows {
		if err := batch.Append(
			row.RunID,
			uint16(row.Year),
			row.Region,
			row.Features,
			row.PC1,
			row.PC2,
			uint8(row.Cluster),
			now,
		); err != nil {
			return errors.Wrapf(err, "append %s", row.Region)
		}
	}

	return errors.Wrap(batch.Send(), "send assignment batch")
}

// CountByRun returns how many rows a run exported
func (r *AssignmentRepository) CountByRun(ctx context.Context, runID uuid.UUID) (uint64, error) {
	var count uint64
	query := fmt.Sprintf(`SELECT count() FROM %s WHERE run_id = ?`, r.table)
	if err := r.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "count rows of run %s", runID)
	}
	return count, nil
}
