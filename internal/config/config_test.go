package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeConfig(t, "workers: 4\nfair_max_percent: 150\nhigh_max_percent: 250\ntolerance_percent: 5\n")

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Workers != 4 {
		t.Errorf("Workers = %d, want 4", c.Workers)
	}
	if c.FairMaxPercent != 150 || c.HighMaxPercent != 250 {
		t.Errorf("tiers = %d/%d, want 150/250", c.FairMaxPercent, c.HighMaxPercent)
	}
	if c.TolerancePercent != 5 {
		t.Errorf("TolerancePercent = %g, want 5", c.TolerancePercent)
	}
}

func TestLoadFromFile_PartialKeepsExisting(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")

	c := Config{Workers: 8, FairMaxPercent: 200, HighMaxPercent: 300}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Workers != 2 {
		t.Errorf("Workers = %d, want 2", c.Workers)
	}
	if c.FairMaxPercent != 200 || c.HighMaxPercent != 300 {
		t.Errorf("tiers = %d/%d, want unchanged 200/300", c.FairMaxPercent, c.HighMaxPercent)
	}
}

func TestLoadFromFile_TierOrder(t *testing.T) {
	path := writeConfig(t, "fair_max_percent: 400\nhigh_max_percent: 300\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for fair_max_percent above high_max_percent")
	}
}

func TestLoadFromFile_NegativeTolerance(t *testing.T) {
	path := writeConfig(t, "tolerance_percent: -1\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for negative tolerance")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := writeConfig(t, "workers: [not a number\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	file := writeConfig(t, "{}")

	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{AnalysisPath: file, Setting: "office"}, false},
		{"empty setting ok", Config{AnalysisPath: file}, false},
		{"facility ok", Config{AnalysisPath: file, Setting: "facility"}, false},
		{"bad setting", Config{AnalysisPath: file, Setting: "clinic"}, true},
		{"no file", Config{}, true},
		{"file missing", Config{AnalysisPath: "/nonexistent/bill.json"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateWithStore(t *testing.T) {
	file := writeConfig(t, "{}")

	c := Config{AnalysisPath: file}
	if err := c.ValidateWithStore(); err == nil {
		t.Fatal("expected error without dsn or snapshot")
	}

	c.DSN = "postgresql://localhost/billcheck"
	if err := c.ValidateWithStore(); err != nil {
		t.Fatalf("ValidateWithStore with dsn: %v", err)
	}

	c.DSN = ""
	c.SnapshotFees = "fees.parquet"
	if err := c.ValidateWithStore(); err != nil {
		t.Fatalf("ValidateWithStore with snapshot: %v", err)
	}
}
