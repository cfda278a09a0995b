package refdata_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/billcheck/internal/db"
	"github.com/gyeh/billcheck/internal/logging"
	"github.com/gyeh/billcheck/internal/refdata"
)

const (
	testPort     = 15433
	testDB       = "billchecktest"
	testUser     = "postgres"
	testPassword = "postgres"
)

// startPostgres boots an embedded Postgres, applies migrations, and
// returns a connected pool. Everything is torn down via t.Cleanup.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		t.Fatalf("start embedded postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Stop(); err != nil {
			t.Errorf("stop embedded postgres: %v", err)
		}
	})

	dsn := fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.ApplyMigrations(ctx, pool, logging.Setup("text")); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return pool
}

func seed(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO ref.fee_schedule
		 (code, modifier, year, description, work_rvu, pe_rvu_facility, pe_rvu_non_facility,
		  mp_rvu, conversion_factor, global_days, status_flag)
		 VALUES ('99213', '', 2024, 'Office visit', 1.3, 0.6, 1.0, 0.1, 34.6062, '000', 'A')`,
		`INSERT INTO ref.fee_schedule
		 (code, modifier, year, work_rvu, pe_rvu_facility, pe_rvu_non_facility,
		  mp_rvu, conversion_factor, direct_fee_non_facility, global_days, status_flag)
		 VALUES ('A0425', '', 2023, 0, 0, 0, 0, 0, 75.25, '000', 'A')`,
		`INSERT INTO ref.fee_schedule
		 (code, modifier, year, work_rvu, conversion_factor, status_flag)
		 VALUES ('0500F', '', 2024, 1.0, 34.6062, 'I')`,
		`INSERT INTO ref.locality (locality_id, state_code, locality_name, work_gpci, pe_gpci, mp_gpci)
		 VALUES ('07', 'CA', 'San Francisco', 1.08, 1.25, 0.65)`,
		`INSERT INTO ref.zip_locality (zip, locality_id) VALUES ('94110', '07')`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestPGStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded postgres test in short mode")
	}

	pool := startPostgres(t)
	seed(t, pool)
	store := refdata.NewPGStore(pool)
	ctx := context.Background()

	t.Run("find row", func(t *testing.T) {
		row, err := store.FindRow(ctx, "99213", "", 2024)
		if err != nil {
			t.Fatalf("FindRow: %v", err)
		}
		if row == nil || row.WorkRVU != 1.3 || row.ConversionFactor != 34.6062 {
			t.Fatalf("row = %+v", row)
		}
		if row.DirectFeeNonFacility != nil {
			t.Errorf("direct fee = %v, want nil", *row.DirectFeeNonFacility)
		}
	})

	t.Run("direct fee scan", func(t *testing.T) {
		row, err := store.FindRow(ctx, "A0425", "", 2023)
		if err != nil {
			t.Fatalf("FindRow: %v", err)
		}
		if row == nil || row.DirectFeeNonFacility == nil || *row.DirectFeeNonFacility != 75.25 {
			t.Fatalf("row = %+v", row)
		}
	})

	t.Run("not found is nil", func(t *testing.T) {
		row, err := store.FindRow(ctx, "99999", "", 2024)
		if err != nil || row != nil {
			t.Fatalf("FindRow = %+v, %v, want nil, nil", row, err)
		}
	})

	t.Run("non-billable filtered", func(t *testing.T) {
		row, err := store.FindRow(ctx, "0500F", "", 2024)
		if err != nil || row != nil {
			t.Fatalf("FindRow = %+v, %v, want status-flag filtered", row, err)
		}
	})

	t.Run("latest year", func(t *testing.T) {
		y, err := store.LatestYear(ctx)
		if err != nil || y != 2024 {
			t.Fatalf("LatestYear = %d, %v, want 2024", y, err)
		}
	})

	t.Run("locality by zip", func(t *testing.T) {
		loc, err := store.ByZIP(ctx, "94110")
		if err != nil {
			t.Fatalf("ByZIP: %v", err)
		}
		if loc == nil || loc.LocalityName != "San Francisco" || loc.PracticeExpenseFactor != 1.25 {
			t.Fatalf("locality = %+v", loc)
		}
		if loc.ZIPCode == nil || *loc.ZIPCode != "94110" {
			t.Errorf("zip = %v", loc.ZIPCode)
		}
	})

	t.Run("locality by state", func(t *testing.T) {
		loc, err := store.ByState(ctx, "CA")
		if err != nil || loc == nil || loc.LocalityID != "07" {
			t.Fatalf("ByState = %+v, %v", loc, err)
		}
	})

	t.Run("no locality match", func(t *testing.T) {
		loc, err := store.ByState(ctx, "TX")
		if err != nil || loc != nil {
			t.Fatalf("ByState = %+v, %v, want nil, nil", loc, err)
		}
	})
}
