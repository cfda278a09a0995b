package refdata

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/billcheck/internal/model"
)

// FeeSnapshotRow mirrors the parquet schema of a fee-schedule snapshot
// file. Direct fees are optional; everything else defaults to zero values.
type FeeSnapshotRow struct {
	Code        string `parquet:"code"`
	Modifier    string `parquet:"modifier"`
	Year        int32  `parquet:"year"`
	Description string `parquet:"description"`

	WorkRVU          float64 `parquet:"work_rvu"`
	PERVUFacility    float64 `parquet:"pe_rvu_facility"`
	PERVUNonFacility float64 `parquet:"pe_rvu_non_facility"`
	MPRVU            float64 `parquet:"mp_rvu"`
	ConversionFactor float64 `parquet:"conversion_factor"`

	DirectFeeFacility    *float64 `parquet:"direct_fee_facility,optional"`
	DirectFeeNonFacility *float64 `parquet:"direct_fee_non_facility,optional"`

	GlobalDays string `parquet:"global_days"`
	StatusFlag string `parquet:"status_flag"`
}

// LocalitySnapshotRow mirrors the parquet schema of a locality snapshot
// file. One row per (locality, ZIP); rows without a ZIP cover state-level
// resolution only.
type LocalitySnapshotRow struct {
	LocalityID   string  `parquet:"locality_id"`
	StateCode    string  `parquet:"state_code"`
	LocalityName string  `parquet:"locality_name"`
	ZIP          *string `parquet:"zip,optional"`

	WorkGPCI float64 `parquet:"work_gpci"`
	PEGPCI   float64 `parquet:"pe_gpci"`
	MPGPCI   float64 `parquet:"mp_gpci"`
}

const snapshotBatchSize = 1000

// LoadSnapshot reads fee-schedule and locality parquet snapshot files into
// an in-memory store. localityPath may be empty, in which case every
// lookup falls back to national defaults.
func LoadSnapshot(feePath, localityPath string) (*MemStore, error) {
	store := NewMemStore()

	if err := readSnapshot(feePath, func(r FeeSnapshotRow) {
		store.AddRow(model.FeeScheduleRow{
			Code:                          r.Code,
			Modifier:                      r.Modifier,
			Year:                          int(r.Year),
			Description:                   r.Description,
			WorkRVU:                       r.WorkRVU,
			PracticeExpenseRVUFacility:    r.PERVUFacility,
			PracticeExpenseRVUNonFacility: r.PERVUNonFacility,
			MalpracticeRVU:                r.MPRVU,
			ConversionFactor:              r.ConversionFactor,
			DirectFeeFacility:             r.DirectFeeFacility,
			DirectFeeNonFacility:          r.DirectFeeNonFacility,
			GlobalDays:                    r.GlobalDays,
			StatusFlag:                    r.StatusFlag,
		})
	}); err != nil {
		return nil, fmt.Errorf("fee schedule snapshot: %w", err)
	}

	if localityPath != "" {
		if err := readSnapshot(localityPath, func(r LocalitySnapshotRow) {
			store.AddLocality(model.LocalityAdjustment{
				LocalityID:            r.LocalityID,
				StateCode:             r.StateCode,
				LocalityName:          r.LocalityName,
				ZIPCode:               r.ZIP,
				WorkFactor:            r.WorkGPCI,
				PracticeExpenseFactor: r.PEGPCI,
				MalpracticeFactor:     r.MPGPCI,
			})
		}); err != nil {
			return nil, fmt.Errorf("locality snapshot: %w", err)
		}
	}

	return store, nil
}

// readSnapshot streams all rows of a parquet file through visit.
func readSnapshot[T any](path string, visit func(T)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	batch := make([]T, snapshotBatchSize)
	for {
		n, err := reader.Read(batch)
		for i := 0; i < n; i++ {
			visit(batch[i])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read parquet rows: %w", err)
		}
	}
}
