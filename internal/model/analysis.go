package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexAmount handles dollar amounts that arrive as JSON numbers, strings
// ("1,234.00", "$515"), or null. Value is nil for null/empty input.
type FlexAmount struct {
	Value *float64
}

func (f *FlexAmount) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = &num
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		cleaned := strings.ReplaceAll(str, ",", "")
		cleaned = strings.TrimPrefix(strings.TrimSpace(cleaned), "$")
		if cleaned == "" {
			f.Value = nil
			return nil
		}
		num, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return err
		}
		f.Value = &num
		return nil
	}
	// null
	f.Value = nil
	return nil
}

func (f FlexAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// BillSummary holds the structured summary fields the extraction step may
// or may not have populated.
type BillSummary struct {
	TotalCharges *FlexAmount `json:"total_charges,omitempty"`
	AmountDue    *FlexAmount `json:"amount_due,omitempty"`
	TotalBilled  *FlexAmount `json:"total_billed,omitempty"`
}

// InsuranceExplanation holds EOB-style amounts when the document carried
// an insurance adjudication section.
type InsuranceExplanation struct {
	AllowedAmount         *FlexAmount `json:"allowed_amount,omitempty"`
	InsurancePaid         *FlexAmount `json:"insurance_paid,omitempty"`
	PatientResponsibility *FlexAmount `json:"patient_responsibility,omitempty"`
}

// ExtractedLine is one raw line item as the document-extraction collaborator
// produced it, before normalization.
type ExtractedLine struct {
	Code        string      `json:"code,omitempty"`
	RawCode     string      `json:"raw_code,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      *FlexAmount `json:"amount,omitempty"`
	Units       *int        `json:"units,omitempty"`
	ServiceDate string      `json:"service_date,omitempty"`
	Modifier    string      `json:"modifier,omitempty"`
}

// BillAnalysis is the untyped, heterogeneous output of the upstream
// document-understanding step. Every field is optional; consumers probe
// each source independently and never assume presence.
type BillAnalysis struct {
	RawText        string                `json:"raw_text,omitempty"`
	Summary        *BillSummary          `json:"summary,omitempty"`
	LineItems      []ExtractedLine       `json:"line_items,omitempty"`
	Insurance      *InsuranceExplanation `json:"insurance,omitempty"`
	Education      []string              `json:"education,omitempty"`
	TemplateFields map[string]string     `json:"template_fields,omitempty"`
	ActionSteps    []string              `json:"action_steps,omitempty"`
}
