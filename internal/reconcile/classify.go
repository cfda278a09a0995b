package reconcile

import (
	"strings"

	"github.com/gyeh/billcheck/internal/model"
)

// Keyword sets scored against the raw bill text. A category needs at
// least classifyThreshold hits to win.
var (
	eobKeywords = []string{
		"explanation of benefits", "eob", "this is not a bill",
		"allowed amount", "plan paid", "claim number", "deductible applied",
	}
	portalKeywords = []string{
		"account balance", "pay online", "statement balance",
		"patient portal", "autopay", "amount due now", "account summary",
	}
	itemizedKeywords = []string{
		"itemized", "cpt", "procedure code", "description of services",
		"quantity", "unit price", "date of service",
	}
)

const classifyThreshold = 2

// ClassifyDocument infers what kind of document the raw text came from.
// The receipt heuristic runs first: "receipt" or "payment received"
// without any mention of charges marks a payment receipt. Ties between
// keyword categories resolve in a fixed order (EOB, itemized, portal) so
// classification stays deterministic.
func ClassifyDocument(text string) model.DocumentClass {
	t := strings.ToLower(text)
	if t == "" {
		return model.DocUnknown
	}

	if (strings.Contains(t, "receipt") || strings.Contains(t, "payment received")) &&
		!strings.Contains(t, "charges") {
		return model.DocPaymentReceipt
	}

	categories := []struct {
		class    model.DocumentClass
		keywords []string
	}{
		{model.DocEOB, eobKeywords},
		{model.DocItemizedStatement, itemizedKeywords},
		{model.DocPortalSummary, portalKeywords},
	}

	best := model.DocUnknown
	bestScore := 0
	for _, c := range categories {
		score := 0
		for _, kw := range c.keywords {
			if strings.Contains(t, kw) {
				score++
			}
		}
		if score >= classifyThreshold && score > bestScore {
			best = c.class
			bestScore = score
		}
	}
	return best
}
