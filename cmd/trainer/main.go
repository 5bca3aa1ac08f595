package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sampahkita/internal/adapters/config"
	"sampahkita/internal/bootstrap"
	"sampahkita/internal/ml"
	"sampahkita/internal/services/training"
)

var version = ""

type trainerFlags struct {
	input   string
	output  string
	pooled  bool
	noSplit bool
	k       int
	seed    int64
	models  string
	dataDir string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f trainerFlags

	cmd := &cobra.Command{
		Use:   "trainer",
		Short: "Fit scaler, PCA and k-means bundles from the historical waste dataset",
		Long: `trainer reads the concatenated dataset (every year, with a tahun column) and
writes one artifact bundle per supported year under <models>/model<year>/, the
per-year serving tables under <data-dir>/, and the augmented dataset with pc1, pc2
and cluster appended. With --pooled a single bundle is fitted over every row.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "dataset_jabar_cleaned.csv", "concatenated dataset with a tahun column")
	flags.StringVarP(&f.output, "output", "o", training.DefaultOutput, "augmented dataset written after fitting")
	flags.BoolVar(&f.pooled, "pooled", false, "fit one bundle over every year into <models>/pooled")
	flags.BoolVar(&f.noSplit, "no-split-data", false, "do not write the per-year data files")
	flags.IntVar(&f.k, "k", 0, "number of clusters (default MODEL_CLUSTERS)")
	flags.Int64Var(&f.seed, "seed", 0, "k-means seed (default MODEL_SEED)")
	flags.StringVar(&f.models, "models", "", "artifact root directory (default MODEL_DIR)")
	flags.StringVar(&f.dataDir, "data-dir", "", "per-year data directory (default DATA_DIR)")

	return cmd
}

func run(cmd *cobra.Command, f trainerFlags) error {
	container := bootstrap.NewContainer(version)
	container.MustInitTrainer(func(cfg *config.Config) {
		if f.models != "" {
			cfg.Model.Dir = f.models
		}
		if f.dataDir != "" {
			cfg.Data.Dir = f.dataDir
		}
		if cmd.Flags().Changed("k") {
			cfg.Model.Clusters = f.k
		}
		if cmd.Flags().Changed("seed") {
			cfg.Model.Seed = f.seed
		}
	})
	defer container.Close()

	ctx, stop := signal.NotifyContext(container.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := container.Config
	km := ml.DefaultKMeansOptions()
	km.K = cfg.Model.Clusters
	km.Seed = cfg.Model.Seed
	if cfg.Model.NInit > 0 {
		km.NInit = cfg.Model.NInit
	}
	if cfg.Model.MaxIter > 0 {
		km.MaxIter = cfg.Model.MaxIter
	}

	summary, err := container.Services.Training.Run(ctx, training.Options{
		Input:     f.input,
		Output:    f.output,
		Pooled:    f.pooled,
		SplitData: !f.noSplit && !f.pooled,
		KMeans:    km,
	})
	if err != nil {
		container.Log.Errorw("Training failed", "input", f.input, "error", err)
		return err
	}

	purgeReportCache(ctx, container)
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

// purgeReportCache drops cached views so the dashboard recomputes them on next read
func purgeReportCache(ctx context.Context, container *bootstrap.Container) {
	cache := container.Repos.ReportCache
	if cache == nil {
		return
	}
	removed, err := cache.Purge(ctx)
	if err != nil {
		container.Log.Warnw("Failed to purge report cache", "error", err)
		return
	}
	container.Log.Infow("Purged report cache", "keys", removed)
}

func printSummary(w io.Writer, s *training.Summary) {
	fmt.Fprintf(w, "Read %s rows", humanize.Comma(int64(s.Rows)))
	if s.Skipped > 0 {
		fmt.Fprintf(w, " (%s outside the supported years skipped)", humanize.Comma(int64(s.Skipped)))
	}
	fmt.Fprintln(w)

	for _, r := range s.Runs {
		label := fmt.Sprintf("%d", r.Year)
		if r.Pooled {
			label = "pooled"
		}
		fmt.Fprintf(w, "  %-6s  rows=%-4d k=%d  inertia=%.4f  pc1=%.1f%%  pc2=%.1f%%  %s\n",
			label, r.Rows, r.K, r.Inertia, r.PC1Variance*100, r.PC2Variance*100, r.Fingerprint[:12])
	}

	fmt.Fprintln(w, "Files written:")
	for _, path := range s.Files {
		fmt.Fprintf(w, "  %s\n", path)
	}
}
