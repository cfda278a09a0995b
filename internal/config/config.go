package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/billcheck/internal/model"
)

// Config holds all runtime configuration for a billcheck run.
type Config struct {
	DSN          string
	AnalysisPath string
	LogFormat    string // "text" or "json"

	// Reference data: either a Postgres DSN or parquet snapshot files.
	SnapshotFees       string
	SnapshotLocalities string

	// Geographic hint and care setting for the bill being analyzed.
	ZIP     string
	State   string
	Setting string // "office" or "facility"

	// Engine tuning, overridable from the YAML config file.
	Workers          int     `yaml:"workers"`
	FairMaxPercent   int     `yaml:"fair_max_percent"`
	HighMaxPercent   int     `yaml:"high_max_percent"`
	TolerancePercent float64 `yaml:"tolerance_percent"`
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Workers          int     `yaml:"workers"`
	FairMaxPercent   int     `yaml:"fair_max_percent"`
	HighMaxPercent   int     `yaml:"high_max_percent"`
	TolerancePercent float64 `yaml:"tolerance_percent"`
}

// LoadFromFile reads a YAML config file and merges its non-zero values
// into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.Workers != 0 {
		c.Workers = yc.Workers
	}
	if yc.FairMaxPercent != 0 {
		c.FairMaxPercent = yc.FairMaxPercent
	}
	if yc.HighMaxPercent != 0 {
		c.HighMaxPercent = yc.HighMaxPercent
	}
	if yc.TolerancePercent != 0 {
		c.TolerancePercent = yc.TolerancePercent
	}
	return c.validateTuning()
}

// validateTuning checks the engine tuning knobs for sane values.
func (c *Config) validateTuning() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.FairMaxPercent < 0 || c.HighMaxPercent < 0 {
		return fmt.Errorf("tier percentages must be positive")
	}
	if c.FairMaxPercent != 0 && c.HighMaxPercent != 0 && c.FairMaxPercent > c.HighMaxPercent {
		return fmt.Errorf("fair_max_percent (%d) must not exceed high_max_percent (%d)",
			c.FairMaxPercent, c.HighMaxPercent)
	}
	if c.TolerancePercent < 0 {
		return fmt.Errorf("tolerance_percent must be positive, got %g", c.TolerancePercent)
	}
	return nil
}

// Validate checks required fields for an analyze/reconcile run.
func (c *Config) Validate() error {
	if c.AnalysisPath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.AnalysisPath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	switch model.CareSetting(c.Setting) {
	case "", model.SettingOffice, model.SettingFacility:
	default:
		return fmt.Errorf("setting must be %q or %q, got %q",
			model.SettingOffice, model.SettingFacility, c.Setting)
	}
	return c.validateTuning()
}

// ValidateWithStore additionally requires a reference data source.
func (c *Config) ValidateWithStore() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" && c.SnapshotFees == "" {
		return fmt.Errorf("--dsn, DATABASE_URL, or --snapshot-fees is required")
	}
	return nil
}
