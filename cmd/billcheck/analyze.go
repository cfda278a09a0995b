package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/analysis"
	"github.com/gyeh/billcheck/internal/benchmark"
	"github.com/gyeh/billcheck/internal/config"
	"github.com/gyeh/billcheck/internal/db"
	"github.com/gyeh/billcheck/internal/exitcode"
	"github.com/gyeh/billcheck/internal/logging"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/reconcile"
	"github.com/gyeh/billcheck/internal/refdata"
)

var configPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Benchmark a bill against the reference fee schedule and reconcile its totals",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&cfg.AnalysisPath, "file", "", "Path to bill-analysis JSON file (required)")
	f.StringVar(&configPath, "config", "", "Path to YAML tuning config")
	f.StringVar(&cfg.ZIP, "zip", "", "ZIP code hint for locality adjustment")
	f.StringVar(&cfg.State, "state", "", "State code hint for locality adjustment")
	f.StringVar(&cfg.Setting, "setting", "office", "Care setting: office or facility")
	f.StringVar(&cfg.SnapshotFees, "snapshot-fees", "", "Fee schedule parquet snapshot (instead of --dsn)")
	f.StringVar(&cfg.SnapshotLocalities, "snapshot-localities", "", "Locality parquet snapshot")
	f.IntVar(&cfg.Workers, "workers", 0, "Bound on concurrent per-line lookups")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the combined, serializable result of both pipelines.
type analyzeOutput struct {
	Benchmark      model.BenchmarkOutput      `json:"benchmark"`
	Reconciliation model.ReconciliationResult `json:"reconciliation"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if configPath != "" {
		if err := cfg.LoadFromFile(configPath); err != nil {
			log.Error().Err(err).Msg("config file load failed")
			os.Exit(exitcode.UsageError)
		}
	}
	if err := cfg.ValidateWithStore(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	store, cleanup := openStore(ctx, log, &cfg)
	defer cleanup()

	bill, err := analysis.ParseFile(cfg.AnalysisPath)
	if err != nil {
		log.Error().Err(err).Msg("bill analysis parse failed")
		os.Exit(exitcode.InputError)
	}

	setting := model.CareSetting(cfg.Setting)
	items := analysis.DeriveLineItems(bill, setting)

	engine := benchmark.NewEngine(store, log)
	if cfg.Workers > 0 {
		engine.Workers = cfg.Workers
	}
	if cfg.FairMaxPercent > 0 {
		engine.FairMaxPercent = cfg.FairMaxPercent
	}
	if cfg.HighMaxPercent > 0 {
		engine.HighMaxPercent = cfg.HighMaxPercent
	}

	reconciler := reconcile.NewReconciler(log)
	if cfg.TolerancePercent > 0 {
		reconciler.TolerancePercent = cfg.TolerancePercent
	}

	out := analyzeOutput{
		Benchmark: engine.Evaluate(ctx, benchmark.Request{
			LineItems: items,
			ZIP:       cfg.ZIP,
			State:     cfg.State,
			Setting:   setting,
		}),
		Reconciliation: reconciler.Reconcile(bill, items),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("encode output failed")
		os.Exit(exitcode.InputError)
	}

	fmt.Fprintf(os.Stderr, "Analyzed %d line items: %s\n",
		len(items), out.Benchmark.Status)
	return nil
}

// openStore picks the parquet snapshot backend when configured, else the
// Postgres pool. The returned cleanup is always safe to call.
func openStore(ctx context.Context, log zerolog.Logger, cfg *config.Config) (refdata.Store, func()) {
	if cfg.SnapshotFees != "" {
		store, err := refdata.LoadSnapshot(cfg.SnapshotFees, cfg.SnapshotLocalities)
		if err != nil {
			log.Error().Err(err).Msg("snapshot load failed")
			os.Exit(exitcode.StoreError)
		}
		return store, func() {}
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return refdata.NewPGStore(pool), pool.Close
}
