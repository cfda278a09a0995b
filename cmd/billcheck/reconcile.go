package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/analysis"
	"github.com/gyeh/billcheck/internal/exitcode"
	"github.com/gyeh/billcheck/internal/logging"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run only the totals reconciliation pipeline (no reference data needed)",
	RunE:  runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.StringVar(&cfg.AnalysisPath, "file", "", "Path to bill-analysis JSON file (required)")
	f.StringVar(&cfg.Setting, "setting", "office", "Care setting: office or facility")
	f.Float64Var(&cfg.TolerancePercent, "tolerance", 0, "Matched/mismatch boundary in percent (default 3)")
	_ = reconcileCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	bill, err := analysis.ParseFile(cfg.AnalysisPath)
	if err != nil {
		log.Error().Err(err).Msg("bill analysis parse failed")
		os.Exit(exitcode.InputError)
	}

	items := analysis.DeriveLineItems(bill, model.CareSetting(cfg.Setting))

	reconciler := reconcile.NewReconciler(log)
	if cfg.TolerancePercent > 0 {
		reconciler.TolerancePercent = cfg.TolerancePercent
	}
	result := reconciler.Reconcile(bill, items)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("encode output failed")
		os.Exit(exitcode.InputError)
	}
	return nil
}
