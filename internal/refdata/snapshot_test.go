package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

// writeParquet writes rows to a parquet file in a temp dir.
func writeParquet[T any](t *testing.T, name string, rows []T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadSnapshot(t *testing.T) {
	direct := 75.25
	zip := "94110"

	feePath := writeParquet(t, "fees.parquet", []FeeSnapshotRow{
		{
			Code: "99213", Year: 2024, Description: "Office visit",
			WorkRVU: 1.3, PERVUFacility: 0.6, PERVUNonFacility: 1.0, MPRVU: 0.1,
			ConversionFactor: 34.6062, GlobalDays: "000", StatusFlag: "A",
		},
		{
			Code: "A0425", Year: 2024, DirectFeeNonFacility: &direct,
			GlobalDays: "000", StatusFlag: "A",
		},
	})
	locPath := writeParquet(t, "localities.parquet", []LocalitySnapshotRow{
		{
			LocalityID: "07", StateCode: "CA", LocalityName: "San Francisco",
			ZIP: &zip, WorkGPCI: 1.08, PEGPCI: 1.25, MPGPCI: 0.65,
		},
	})

	store, err := LoadSnapshot(feePath, locPath)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	ctx := context.Background()
	row, err := store.FindRow(ctx, "99213", "", 2024)
	if err != nil || row == nil {
		t.Fatalf("FindRow: %+v, %v", row, err)
	}
	if row.WorkRVU != 1.3 || row.ConversionFactor != 34.6062 {
		t.Errorf("row = %+v", row)
	}

	row, _ = store.FindRow(ctx, "A0425", "", 2024)
	if row == nil || row.DirectFeeNonFacility == nil || *row.DirectFeeNonFacility != 75.25 {
		t.Errorf("direct fee row = %+v", row)
	}

	if y, _ := store.LatestYear(ctx); y != 2024 {
		t.Errorf("latest year = %d, want 2024", y)
	}

	loc, _ := store.ByZIP(ctx, "94110")
	if loc == nil || loc.PracticeExpenseFactor != 1.25 {
		t.Errorf("locality = %+v", loc)
	}
}

func TestLoadSnapshotWithoutLocalities(t *testing.T) {
	feePath := writeParquet(t, "fees.parquet", []FeeSnapshotRow{
		{Code: "99213", Year: 2024, WorkRVU: 1.3, ConversionFactor: 34.6062, StatusFlag: "A"},
	})

	store, err := LoadSnapshot(feePath, "")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	loc, err := store.ByState(context.Background(), "CA")
	if err != nil || loc != nil {
		t.Errorf("ByState = %+v, %v, want nil locality", loc, err)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot("/nonexistent/fees.parquet", ""); err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
}
