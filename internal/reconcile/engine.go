// Package reconcile independently extracts candidate "total amount"
// signals from a bill, classifies the document, selects the single best
// comparison total, and checks it against the summed line items. It runs
// in parallel with benchmark resolution and never gates it.
package reconcile

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// DefaultTolerancePercent is how far the selected total may drift from
// the summed line charges and still count as matched.
const DefaultTolerancePercent = 3.0

// selectionPriority orders candidate types by comparison quality: an
// insurer's allowed amount is the best anchor, raw charges next, and
// patient responsibility last since it may already reflect adjustments.
var selectionPriority = []model.TotalType{
	model.TotalAllowed,
	model.TotalCharges,
	model.TotalPatientResponsibility,
}

// Reconciler runs the totals pipeline. Zero state is shared between
// calls.
type Reconciler struct {
	log zerolog.Logger

	// TolerancePercent overrides the matched/mismatch boundary.
	TolerancePercent float64
}

func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log, TolerancePercent: DefaultTolerancePercent}
}

// Reconcile extracts, selects, and checks totals for one bill. items are
// the LineItems the caller derived from the same analysis; their billed
// amounts form the charge sum the tolerance check runs against.
func (r *Reconciler) Reconcile(a *model.BillAnalysis, items []model.LineItem) model.ReconciliationResult {
	res := model.ReconciliationResult{
		LineItems:     items,
		DocumentClass: ClassifyDocument(a.RawText),
	}

	sum := 0.0
	for _, li := range items {
		sum += li.BilledAmount
	}
	res.SumOfLineCharges = normalize.Round2(sum)

	res.Candidates = ExtractCandidates(a)
	res.ComparisonTotal = selectComparisonTotal(res.Candidates)

	r.log.Debug().
		Int("candidates", len(res.Candidates)).
		Str("document_class", string(res.DocumentClass)).
		Float64("line_charge_sum", res.SumOfLineCharges).
		Msg("totals extracted")

	res.Status, res.Note = r.check(res.ComparisonTotal, res.SumOfLineCharges)
	return res
}

// selectComparisonTotal picks the first candidate, in priority order of
// type, whose confidence is above low. Ambiguity between candidates of
// the same type resolves by confidence, then extraction order.
func selectComparisonTotal(candidates []model.TotalCandidate) *model.ComparisonTotal {
	for _, typ := range selectionPriority {
		var best *model.TotalCandidate
		for i := range candidates {
			c := &candidates[i]
			if c.Type != typ || c.Confidence == model.ConfidenceLow {
				continue
			}
			if best == nil || confidenceRank(c.Confidence) > confidenceRank(best.Confidence) {
				best = c
			}
		}
		if best == nil {
			continue
		}
		ct := &model.ComparisonTotal{
			Value:      best.Amount,
			Type:       best.Type,
			Confidence: best.Confidence,
			Explanation: fmt.Sprintf("selected %s total $%.2f from %s (%s confidence)",
				best.Type, best.Amount, best.Evidence, best.Confidence),
		}
		if best.Type == model.TotalPatientResponsibility {
			ct.LimitedComparability = true
			ct.Explanation += "; patient responsibility may already reflect insurance adjustments, so it is a weaker comparison basis"
		}
		return ct
	}
	return nil
}

// check compares the selected total against the summed line charges.
// The tolerance boundary is inclusive. Note: the sum is always of
// charge-type line amounts even when the selected total is of a
// different type; see the limited-comparability flag.
func (r *Reconciler) check(ct *model.ComparisonTotal, sum float64) (model.ReconciliationStatus, string) {
	if ct == nil {
		return model.ReconcileInsufficientData, "no comparison total could be selected from the bill"
	}
	if sum <= 0 {
		return model.ReconcileInsufficientData, "no line item charges were available to check the total against"
	}

	tolerance := r.TolerancePercent
	if tolerance <= 0 {
		tolerance = DefaultTolerancePercent
	}

	diffPct := math.Abs(ct.Value-sum) / sum * 100
	if diffPct <= tolerance+1e-9 {
		return model.ReconcileMatched, ""
	}
	return model.ReconcileMismatch, fmt.Sprintf(
		"selected total $%.2f differs from the $%.2f sum of line charges by %.1f%%",
		ct.Value, sum, diffPct)
}
