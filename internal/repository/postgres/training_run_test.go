package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampahkita/internal/domain/training"
	"sampahkita/internal/testsupport"
	"sampahkita/pkg/errors"
)

func newRun(year int, createdAt time.Time) *training.Run {
	return &training.Run{
		ID:          uuid.New(),
		Year:        year,
		Rows:        27,
		K:           3,
		Seed:        42,
		Inertia:     12.5,
		PC1Variance: 0.61,
		PC2Variance: 0.22,
		Fingerprint: "deadbeef",
		ArtifactDir: "model2021",
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
}

func TestTrainingRunRepository(t *testing.T) {
	helper := testsupport.NewTestPostgres(t)
	repo := NewTrainingRunRepository(helper.Tx())
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))

	base := time.Now()
	older := newRun(2021, base.Add(-time.Hour))
	newer := newRun(2021, base)
	other := newRun(2022, base)

	for _, run := range []*training.Run{older, newer, other} {
		require.NoError(t, repo.Store(ctx, run))
	}
	require.NoError(t, repo.Store(ctx, newer), "storing the same run twice is a no-op")

	runs, err := repo.ListByYear(ctx, 2021, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	latest, err := repo.Latest(ctx, 2021)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Equal(t, newer.PC1Variance, latest.PC1Variance)

	_, err = repo.Latest(ctx, 2020)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
