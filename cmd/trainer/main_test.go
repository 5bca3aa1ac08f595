package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "sampahkita/internal/domain/training"
	"sampahkita/internal/services/training"
)

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--pooled", "--k", "4", "--models", "out", "--no-split-data"}))

	flags := cmd.Flags()
	pooled, err := flags.GetBool("pooled")
	require.NoError(t, err)
	assert.True(t, pooled)

	k, err := flags.GetInt("k")
	require.NoError(t, err)
	assert.Equal(t, 4, k)
	assert.True(t, flags.Changed("k"))
	assert.False(t, flags.Changed("seed"))

	output, err := flags.GetString("output")
	require.NoError(t, err)
	assert.Equal(t, training.DefaultOutput, output)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &training.Summary{
		Rows:    12345,
		Skipped: 27,
		Runs: []domain.Run{
			{ID: uuid.New(), Year: 2021, Rows: 27, K: 3, Inertia: 1.5, PC1Variance: 0.62, PC2Variance: 0.21,
				Fingerprint: "0123456789abcdef0123", CreatedAt: time.Now()},
			{ID: uuid.New(), Year: 0, Pooled: true, Rows: 108, K: 3, Fingerprint: "fedcba9876543210fedc"},
		},
		Files: []string{"model2021/scaler_2021.json", "dataset_cluster_final.csv"},
	})

	out := buf.String()
	assert.Contains(t, out, "Read 12,345 rows (27 outside the supported years skipped)")
	assert.Contains(t, out, "2021")
	assert.Contains(t, out, "pc1=62.0%")
	assert.Contains(t, out, "0123456789ab")
	assert.Contains(t, out, "pooled")
	assert.Contains(t, out, "  dataset_cluster_final.csv\n")
}
