// Package analysis decodes the raw bill-analysis object produced by the
// upstream document-extraction collaborator. The object is heterogeneous
// and unreliable: every field is probed defensively and absent or
// malformed values degrade to zero values instead of failing the parse.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// Parse decodes a bill-analysis JSON document. Unknown fields are
// ignored; amounts accept both string and number forms.
func Parse(data []byte) (*model.BillAnalysis, error) {
	var a model.BillAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse bill analysis: %w", err)
	}
	return &a, nil
}

// ParseFile reads and decodes a bill-analysis JSON file.
func ParseFile(path string) (*model.BillAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bill analysis: %w", err)
	}
	return Parse(data)
}

// DeriveLineItems converts the extracted lines into benchmark inputs.
// Lines with no code, description, or amount are dropped; everything
// else is kept even when the code looks hopeless, so normalization
// failures show up in the output rather than silently disappearing.
func DeriveLineItems(a *model.BillAnalysis, setting model.CareSetting) []model.LineItem {
	items := make([]model.LineItem, 0, len(a.LineItems))
	for _, el := range a.LineItems {
		raw := el.RawCode
		if raw == "" {
			raw = el.Code
		}

		amount := 0.0
		if el.Amount != nil && el.Amount.Value != nil && *el.Amount.Value > 0 {
			amount = *el.Amount.Value
		}

		if raw == "" && el.Description == "" && amount == 0 {
			continue
		}

		units := 1
		if el.Units != nil && *el.Units > 1 {
			units = *el.Units
		}

		items = append(items, model.LineItem{
			Code:         el.Code,
			RawCode:      raw,
			Description:  el.Description,
			BilledAmount: amount,
			Units:        units,
			ServiceDate:  normalize.ParseDate(el.ServiceDate),
			Modifier:     el.Modifier,
			Setting:      setting,
		})
	}
	return items
}
