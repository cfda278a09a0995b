package model

import "time"

// CareSetting distinguishes where a service was performed. Practice-expense
// RVUs and direct fees both carry separate facility/non-facility values.
type CareSetting string

const (
	SettingOffice   CareSetting = "office"
	SettingFacility CareSetting = "facility"
)

// NormalizedCode is the structured result of parsing a raw billing code
// string. Code is empty when normalization failed entirely; RawInput is
// always preserved for the audit trail.
type NormalizedCode struct {
	Code     string `json:"code"`
	Modifier string `json:"modifier"`
	RawInput string `json:"raw_input"`
}

// LocalityAdjustment holds the geographic practice cost factors for one
// CMS locality. All factors are 1.0 for the national default.
type LocalityAdjustment struct {
	LocalityID            string  `json:"locality_id"`
	StateCode             string  `json:"state_code"`
	LocalityName          string  `json:"locality_name"`
	ZIPCode               *string `json:"zip_code,omitempty"`
	WorkFactor            float64 `json:"work_factor"`
	PracticeExpenseFactor float64 `json:"practice_expense_factor"`
	MalpracticeFactor     float64 `json:"malpractice_factor"`
}

// FeeScheduleRow is one edition-year entry of the reference fee schedule
// for a (code, modifier) pair. Direct fees are nil when CMS publishes no
// flat amount for that setting.
type FeeScheduleRow struct {
	Code        string `json:"code"`
	Modifier    string `json:"modifier"`
	Year        int    `json:"year"`
	Description string `json:"description"`

	WorkRVU                       float64 `json:"work_rvu"`
	PracticeExpenseRVUFacility    float64 `json:"pe_rvu_facility"`
	PracticeExpenseRVUNonFacility float64 `json:"pe_rvu_non_facility"`
	MalpracticeRVU                float64 `json:"mp_rvu"`
	ConversionFactor              float64 `json:"conversion_factor"`

	DirectFeeFacility    *float64 `json:"direct_fee_facility,omitempty"`
	DirectFeeNonFacility *float64 `json:"direct_fee_non_facility,omitempty"`

	GlobalDays string `json:"global_days"`
	StatusFlag string `json:"status_flag"`
}

// DirectFee returns the flat published fee for the given setting, or nil.
func (r *FeeScheduleRow) DirectFee(setting CareSetting) *float64 {
	if setting == SettingFacility {
		return r.DirectFeeFacility
	}
	return r.DirectFeeNonFacility
}

// PracticeExpenseRVU returns the PE RVU for the given setting.
func (r *FeeScheduleRow) PracticeExpenseRVU(setting CareSetting) float64 {
	if setting == SettingFacility {
		return r.PracticeExpenseRVUFacility
	}
	return r.PracticeExpenseRVUNonFacility
}

// BillableStatusFlags lists the fee-schedule status indicators treated as
// payable. Rows with any other flag are excluded at query time.
var BillableStatusFlags = []string{"A", "R", "T"}

// LineItem is one billed service as derived from the upstream document
// extraction. Units below 1 are treated as 1.
type LineItem struct {
	Code         string      `json:"code"`
	RawCode      string      `json:"raw_code"`
	Description  string      `json:"description"`
	BilledAmount float64     `json:"billed_amount"`
	Units        int         `json:"units"`
	ServiceDate  *time.Time  `json:"service_date,omitempty"`
	Modifier     string      `json:"modifier,omitempty"`
	Setting      CareSetting `json:"setting"`
}

// EffectiveUnits clamps Units to the 1+ range the fee math expects.
func (li *LineItem) EffectiveUnits() int {
	if li.Units < 1 {
		return 1
	}
	return li.Units
}
