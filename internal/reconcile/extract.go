package reconcile

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// A source extracts candidate totals from one region of the heterogeneous
// bill-analysis object. Sources are independent: each probes only its own
// fields and emits nothing when they are absent.
type source struct {
	name    string
	extract func(*model.BillAnalysis) []model.TotalCandidate
}

var sources = []source{
	{"summary_fields", fromSummary},
	{"line_item_sum", fromLineSum},
	{"insurance_fields", fromInsurance},
	{"education_text", fromEducation},
	{"template_fields", fromTemplate},
	{"action_steps", fromActionSteps},
}

// ExtractCandidates runs every source over the analysis and deduplicates
// near-equal amounts (within $1) of the same type, keeping the higher
// confidence candidate.
func ExtractCandidates(a *model.BillAnalysis) []model.TotalCandidate {
	var all []model.TotalCandidate
	for _, src := range sources {
		all = append(all, src.extract(a)...)
	}
	return dedupe(all)
}

func dedupe(candidates []model.TotalCandidate) []model.TotalCandidate {
	kept := []model.TotalCandidate{}
	for _, c := range candidates {
		dup := false
		for i, k := range kept {
			if k.Type != c.Type || math.Abs(k.Amount-c.Amount) > 1.0 {
				continue
			}
			dup = true
			if confidenceRank(c.Confidence) > confidenceRank(k.Confidence) {
				kept[i] = c
			}
			break
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}

func confidenceRank(c model.Confidence) int {
	switch c {
	case model.ConfidenceHigh:
		return 3
	case model.ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// fromSummary reads the structured summary fields: these are the most
// trustworthy signals when the extraction step populated them.
func fromSummary(a *model.BillAnalysis) []model.TotalCandidate {
	if a.Summary == nil {
		return nil
	}
	var out []model.TotalCandidate
	if v := amountOf(a.Summary.TotalCharges); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalCharges, Amount: *v, Label: "total_charges",
			Confidence: model.ConfidenceHigh, Evidence: "summary field total_charges",
		})
	}
	if v := amountOf(a.Summary.TotalBilled); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalCharges, Amount: *v, Label: "total_billed",
			Confidence: model.ConfidenceHigh, Evidence: "summary field total_billed",
		})
	}
	if v := amountOf(a.Summary.AmountDue); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalPatientResponsibility, Amount: *v, Label: "amount_due",
			Confidence: model.ConfidenceHigh, Evidence: "summary field amount_due",
		})
	}
	return out
}

// fromLineSum computes a charges total from the extracted line items.
// Being derived rather than printed on the bill, it only rates medium.
func fromLineSum(a *model.BillAnalysis) []model.TotalCandidate {
	sum := 0.0
	counted := 0
	for _, li := range a.LineItems {
		if v := amountOf(li.Amount); v != nil && *v > 0 {
			sum += *v
			counted++
		}
	}
	if counted == 0 {
		return nil
	}
	return []model.TotalCandidate{{
		Type: model.TotalCharges, Amount: normalize.Round2(sum), Label: "line_item_sum",
		Confidence: model.ConfidenceMedium,
		Evidence:   fmt.Sprintf("sum of %d extracted line items", counted),
	}}
}

func fromInsurance(a *model.BillAnalysis) []model.TotalCandidate {
	if a.Insurance == nil {
		return nil
	}
	var out []model.TotalCandidate
	if v := amountOf(a.Insurance.AllowedAmount); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalAllowed, Amount: *v, Label: "allowed_amount",
			Confidence: model.ConfidenceHigh, Evidence: "insurance field allowed_amount",
		})
	}
	if v := amountOf(a.Insurance.InsurancePaid); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalInsurancePaid, Amount: *v, Label: "insurance_paid",
			Confidence: model.ConfidenceHigh, Evidence: "insurance field insurance_paid",
		})
	}
	if v := amountOf(a.Insurance.PatientResponsibility); v != nil {
		out = append(out, model.TotalCandidate{
			Type: model.TotalPatientResponsibility, Amount: *v, Label: "patient_responsibility",
			Confidence: model.ConfidenceHigh, Evidence: "insurance field patient_responsibility",
		})
	}
	return out
}

func fromEducation(a *model.BillAnalysis) []model.TotalCandidate {
	return scanFreeText(a.Education, "education_text")
}

func fromActionSteps(a *model.BillAnalysis) []model.TotalCandidate {
	return scanFreeText(a.ActionSteps, "action_steps")
}

// templateKeys maps known template-field names to total types. Template
// values were filled by the upstream extractor from structured slots, so
// they rate high like the summary fields.
var templateKeys = map[string]model.TotalType{
	"total_charges":          model.TotalCharges,
	"total":                  model.TotalCharges,
	"charges":                model.TotalCharges,
	"allowed_amount":         model.TotalAllowed,
	"amount_due":             model.TotalPatientResponsibility,
	"patient_responsibility": model.TotalPatientResponsibility,
	"balance":                model.TotalPatientResponsibility,
	"insurance_paid":         model.TotalInsurancePaid,
}

// templateKeyOrder keeps template extraction deterministic despite map
// iteration order.
var templateKeyOrder = []string{
	"total_charges", "total", "charges", "allowed_amount",
	"amount_due", "patient_responsibility", "balance", "insurance_paid",
}

func fromTemplate(a *model.BillAnalysis) []model.TotalCandidate {
	if len(a.TemplateFields) == 0 {
		return nil
	}
	var out []model.TotalCandidate
	for _, key := range templateKeyOrder {
		raw, ok := a.TemplateFields[key]
		if !ok {
			continue
		}
		v, ok := parseAmount(raw)
		if !ok {
			continue
		}
		out = append(out, model.TotalCandidate{
			Type: templateKeys[key], Amount: v, Label: key,
			Confidence: model.ConfidenceHigh,
			Evidence:   fmt.Sprintf("template field %s=%q", key, raw),
		})
	}
	return out
}

var dollarAmount = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`)

// freeTextTypes maps trigger phrases to the total type a nearby dollar
// amount most plausibly represents. Checked in order; first hit wins.
var freeTextTypes = []struct {
	phrase string
	typ    model.TotalType
}{
	{"allowed", model.TotalAllowed},
	{"insurance paid", model.TotalInsurancePaid},
	{"plan paid", model.TotalInsurancePaid},
	{"you owe", model.TotalPatientResponsibility},
	{"amount due", model.TotalPatientResponsibility},
	{"balance", model.TotalPatientResponsibility},
	{"total charges", model.TotalCharges},
	{"billed", model.TotalCharges},
	{"total", model.TotalCharges},
}

// scanFreeText pulls dollar amounts out of prose. Regex extraction from
// free text is the weakest signal, so everything here rates low.
func scanFreeText(texts []string, sourceName string) []model.TotalCandidate {
	var out []model.TotalCandidate
	for _, text := range texts {
		lower := strings.ToLower(text)
		m := dollarAmount.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := parseAmount(m[1])
		if !ok {
			continue
		}
		for _, ft := range freeTextTypes {
			if strings.Contains(lower, ft.phrase) {
				out = append(out, model.TotalCandidate{
					Type: ft.typ, Amount: v, Label: ft.phrase,
					Confidence: model.ConfidenceLow,
					Evidence:   fmt.Sprintf("%s: %q", sourceName, text),
				})
				break
			}
		}
	}
	return out
}

// parseAmount parses a dollar string, tolerating $, commas, and blanks.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func amountOf(f *model.FlexAmount) *float64 {
	if f == nil {
		return nil
	}
	return f.Value
}
