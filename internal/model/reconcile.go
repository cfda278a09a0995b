package model

// TotalType tags what a candidate total actually represents on the bill.
type TotalType string

const (
	TotalCharges               TotalType = "charges"
	TotalAllowed               TotalType = "allowed"
	TotalPatientResponsibility TotalType = "patient_responsibility"
	TotalInsurancePaid         TotalType = "insurance_paid"
)

// Confidence grades how reliable an extracted candidate is: high for
// structured fields, medium for computed sums, low for free-text regex hits.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DocumentClass is the inferred kind of source document.
type DocumentClass string

const (
	DocItemizedStatement DocumentClass = "itemized_statement"
	DocEOB               DocumentClass = "eob"
	DocPortalSummary     DocumentClass = "portal_summary"
	DocPaymentReceipt    DocumentClass = "payment_receipt"
	DocUnknown           DocumentClass = "unknown"
)

// ReconciliationStatus reports whether the selected total agrees with the
// summed line items.
type ReconciliationStatus string

const (
	ReconcileMatched          ReconciliationStatus = "matched"
	ReconcileMismatch         ReconciliationStatus = "mismatch"
	ReconcileInsufficientData ReconciliationStatus = "insufficient_data"
)

// TotalCandidate is one total-like amount found on the bill, with the
// evidence text it was extracted from.
type TotalCandidate struct {
	Type       TotalType  `json:"type"`
	Amount     float64    `json:"amount"`
	Label      string     `json:"label"`
	Confidence Confidence `json:"confidence"`
	Evidence   string     `json:"evidence"`
}

// ComparisonTotal is the single candidate selected as the comparison
// figure. LimitedComparability marks patient-responsibility totals, which
// may already reflect insurance adjustments.
type ComparisonTotal struct {
	Value                float64    `json:"value"`
	Type                 TotalType  `json:"type"`
	Confidence           Confidence `json:"confidence"`
	Explanation          string     `json:"explanation"`
	LimitedComparability bool       `json:"limited_comparability"`
}

// ReconciliationResult is the complete output of the totals pipeline.
type ReconciliationResult struct {
	LineItems        []LineItem           `json:"line_items"`
	Candidates       []TotalCandidate     `json:"candidates"`
	SumOfLineCharges float64              `json:"sum_of_line_charges"`
	ComparisonTotal  *ComparisonTotal     `json:"comparison_total,omitempty"`
	DocumentClass    DocumentClass        `json:"document_classification"`
	Status           ReconciliationStatus `json:"reconciliation_status"`
	Note             string               `json:"note,omitempty"`
}
