package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/billcheck/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "billcheck",
	Short: "Medical bill benchmark and totals reconciliation engine",
	Long:  "Compares billed line items against a geographically adjusted reference fee schedule and reconciles conflicting totals into one defensible comparison figure.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string for reference data (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
