package model

// LineStatus classifies how a billed amount compares to the reference price.
type LineStatus string

const (
	LineFair     LineStatus = "fair"
	LineHigh     LineStatus = "high"
	LineVeryHigh LineStatus = "very_high"
	LineUnknown  LineStatus = "unknown"
)

// MatchStatus reports whether a fee-schedule row was found for a line.
type MatchStatus string

const (
	MatchMatched MatchStatus = "matched"
	MatchMissing MatchStatus = "missing"
)

// LocalityConfidence reports how the geographic adjustment was resolved.
type LocalityConfidence string

const (
	LocalityLocalAdjusted    LocalityConfidence = "local_adjusted"
	LocalityNationalEstimate LocalityConfidence = "national_estimate"
)

// BenchmarkStatus summarizes an entire invocation.
type BenchmarkStatus string

const (
	BenchmarkOK        BenchmarkStatus = "ok"
	BenchmarkNoCodes   BenchmarkStatus = "no_codes"
	BenchmarkNoMatches BenchmarkStatus = "no_matches"
	BenchmarkPartial   BenchmarkStatus = "partial"
)

// LineResult is the per-line outcome of benchmark resolution. Reference
// fields are nil when no fee-schedule match was usable; Notes carries a
// human-readable annotation for every fallback or edge case triggered.
type LineResult struct {
	Code                 string      `json:"code"`
	Modifier             string      `json:"modifier,omitempty"`
	Description          string      `json:"description"`
	BilledAmount         float64     `json:"billed_amount"`
	Units                int         `json:"units"`
	ReferencePerUnit     *float64    `json:"reference_per_unit,omitempty"`
	ReferenceTotal       *float64    `json:"reference_total,omitempty"`
	Multiple             *float64    `json:"multiple,omitempty"`
	Status               LineStatus  `json:"status"`
	MatchStatus          MatchStatus `json:"match_status"`
	YearUsed             *int        `json:"year_used,omitempty"`
	Notes                []string    `json:"notes"`
	IsBundled            bool        `json:"is_bundled"`
	ModifierFallbackUsed bool        `json:"modifier_fallback_used"`
}

// BenchmarkTotals rolls up billed and reference amounts across matched lines.
type BenchmarkTotals struct {
	BilledTotal    float64  `json:"billed_total"`
	ReferenceTotal *float64 `json:"reference_total,omitempty"`
	Multiple       *float64 `json:"multiple,omitempty"`
	Difference     *float64 `json:"difference,omitempty"`
}

// BenchmarkMetadata records how geography and fee-schedule year were
// resolved for the invocation.
type BenchmarkMetadata struct {
	LocalityConfidence LocalityConfidence `json:"locality_confidence"`
	LocalityName       *string            `json:"locality_name,omitempty"`
	YearUsed           int                `json:"year_used"`
	RequestedYears     []int              `json:"requested_years"`
	UsedYearFallback   bool               `json:"used_year_fallback"`
	FallbackReason     *string            `json:"fallback_reason,omitempty"`
}

// QueryAttempt records one fee-schedule lookup and its outcome
// ("matched", "not_found", or "error: ...").
type QueryAttempt struct {
	Code     string `json:"code"`
	Modifier string `json:"modifier"`
	Year     int    `json:"year"`
	Outcome  string `json:"outcome"`
}

// DebugTrace is the reproducible audit trail for one invocation: every raw
// code seen, every normalization result, and every store query attempted.
type DebugTrace struct {
	InvocationID    string           `json:"invocation_id"`
	RawCodes        []string         `json:"raw_codes"`
	NormalizedCodes []NormalizedCode `json:"normalized_codes"`
	MatchedCodes    []string         `json:"matched_codes"`
	MissingCodes    []string         `json:"missing_codes"`
	Queries         []QueryAttempt   `json:"queries"`
}

// BenchmarkOutput is the complete result of one benchmark invocation.
type BenchmarkOutput struct {
	Status      BenchmarkStatus   `json:"status"`
	Totals      BenchmarkTotals   `json:"totals"`
	Metadata    BenchmarkMetadata `json:"metadata"`
	LineResults []LineResult      `json:"line_results"`
	DebugTrace  DebugTrace        `json:"debug_trace"`
}
