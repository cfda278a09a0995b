package benchmark

import (
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// ComputeFee combines a fee-schedule row, an optional locality adjustment,
// and the care setting into a single reference price per unit, rounded to
// 2 decimals. Returns nil when no usable fee can be derived.
//
// A valid direct fee with no locality short-circuits the RVU math. When a
// locality is present the RVU formula is used instead, except when all
// three RVUs are zero: then the unadjusted direct fee is the only price
// available and is returned even though it ignores the locality. That
// mirrors the published data's limitation rather than fixing it.
func ComputeFee(row *model.FeeScheduleRow, loc *model.LocalityAdjustment, setting model.CareSetting) *float64 {
	direct := row.DirectFee(setting)

	if loc == nil && usableFee(direct) {
		f := normalize.Round2(*direct)
		return &f
	}

	peRVU := row.PracticeExpenseRVU(setting)
	if row.WorkRVU == 0 && peRVU == 0 && row.MalpracticeRVU == 0 {
		if usableFee(direct) {
			f := normalize.Round2(*direct)
			return &f
		}
		return nil
	}

	workFactor, peFactor, mpFactor := 1.0, 1.0, 1.0
	if loc != nil {
		workFactor = loc.WorkFactor
		peFactor = loc.PracticeExpenseFactor
		mpFactor = loc.MalpracticeFactor
	}

	fee := (row.WorkRVU*workFactor + peRVU*peFactor + row.MalpracticeRVU*mpFactor) * row.ConversionFactor
	fee = normalize.Round2(fee)
	if fee <= 0 {
		return nil
	}
	return &fee
}

func usableFee(f *float64) bool {
	return f != nil && *f > 0
}
