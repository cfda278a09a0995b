package refdata

import (
	"context"
	"testing"

	"github.com/gyeh/billcheck/internal/model"
)

func TestMemStoreFindRow(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.AddRow(model.FeeScheduleRow{Code: "99213", Year: 2024, WorkRVU: 1.3, StatusFlag: "A"})
	s.AddRow(model.FeeScheduleRow{Code: "99213", Modifier: "25", Year: 2024, WorkRVU: 1.0, StatusFlag: "A"})
	s.AddRow(model.FeeScheduleRow{Code: "0001F", Year: 2023, StatusFlag: "I"})

	row, err := s.FindRow(ctx, "99213", "", 2024)
	if err != nil || row == nil || row.WorkRVU != 1.3 {
		t.Fatalf("FindRow base = %+v, %v", row, err)
	}

	row, _ = s.FindRow(ctx, "99213", "25", 2024)
	if row == nil || row.WorkRVU != 1.0 {
		t.Fatalf("FindRow modifier = %+v", row)
	}

	if row, _ := s.FindRow(ctx, "99213", "", 2023); row != nil {
		t.Errorf("wrong year returned %+v", row)
	}

	// Non-billable status flags are filtered out.
	if row, _ := s.FindRow(ctx, "0001F", "", 2023); row != nil {
		t.Errorf("non-billable row returned %+v", row)
	}
}

func TestMemStoreLatestYear(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if y, _ := s.LatestYear(ctx); y != 0 {
		t.Errorf("empty store latest year = %d, want 0", y)
	}

	s.AddRow(model.FeeScheduleRow{Code: "99213", Year: 2022, StatusFlag: "A"})
	s.AddRow(model.FeeScheduleRow{Code: "99213", Year: 2024, StatusFlag: "A"})
	s.AddRow(model.FeeScheduleRow{Code: "99213", Year: 2023, StatusFlag: "A"})

	if y, _ := s.LatestYear(ctx); y != 2024 {
		t.Errorf("latest year = %d, want 2024", y)
	}
}

func TestMemStoreLocalities(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	zip := "94110"
	s.AddLocality(model.LocalityAdjustment{
		LocalityID: "07", StateCode: "CA", LocalityName: "San Francisco",
		ZIPCode: &zip, WorkFactor: 1.08, PracticeExpenseFactor: 1.25, MalpracticeFactor: 0.65,
	})

	loc, err := s.ByZIP(ctx, "94110")
	if err != nil || loc == nil || loc.LocalityName != "San Francisco" {
		t.Fatalf("ByZIP = %+v, %v", loc, err)
	}

	if loc, _ := s.ByZIP(ctx, "00000"); loc != nil {
		t.Errorf("unexpected ZIP match %+v", loc)
	}

	loc, _ = s.ByState(ctx, "CA")
	if loc == nil || loc.LocalityID != "07" {
		t.Fatalf("ByState = %+v", loc)
	}

	if loc, _ := s.ByState(ctx, "TX"); loc != nil {
		t.Errorf("unexpected state match %+v", loc)
	}
}
