package benchmark

import (
	"context"
	"fmt"
	"math"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
)

// lineTrace carries the per-line audit data the aggregator folds into the
// invocation-level debug trace.
type lineTrace struct {
	raw              string
	normalized       model.NormalizedCode
	queries          []model.QueryAttempt
	requestedYear    int
	usedYearFallback bool
	fallbackReason   string
}

// evaluateLine runs the full match-and-classify pipeline for one line
// item. It never returns an error: every failure mode degrades to a
// missing/unknown result with an explanatory note.
func (s *session) evaluateLine(ctx context.Context, li model.LineItem) (model.LineResult, lineTrace) {
	raw := li.RawCode
	if raw == "" {
		raw = li.Code
	}
	nc := normalize.Code(raw)

	res := model.LineResult{
		Code:         nc.Code,
		Modifier:     nc.Modifier,
		Description:  li.Description,
		BilledAmount: li.BilledAmount,
		Units:        li.EffectiveUnits(),
		Status:       model.LineUnknown,
		MatchStatus:  model.MatchMissing,
		Notes:        []string{},
	}
	trace := lineTrace{raw: raw, normalized: nc}

	if !normalize.IsValidBillableCode(nc.Code) {
		res.Notes = append(res.Notes,
			fmt.Sprintf("could not recognize a billable code in %q", raw))
		return res, trace
	}

	requested := s.requestedYear(&li)
	trace.requestedYear = requested
	if requested == 0 {
		res.Notes = append(res.Notes, "no fee schedule editions are available")
		return res, trace
	}

	row := s.findRow(ctx, nc, requested, &res, &trace)
	if row == nil {
		res.Notes = append(res.Notes,
			fmt.Sprintf("no fee schedule entry found for %s", nc.Code))
		return res, trace
	}

	fee := ComputeFee(row, s.locality, li.Setting)
	if fee == nil {
		res.Notes = append(res.Notes,
			fmt.Sprintf("fee schedule entry for %s has no usable price", nc.Code))
		return res, trace
	}

	units := float64(li.EffectiveUnits())
	refTotal := normalize.Round2(*fee * units)
	rawMultiple := li.BilledAmount / refTotal
	multiple := normalize.Round2(rawMultiple)
	percent := int(math.Round(rawMultiple * 100))

	res.MatchStatus = model.MatchMatched
	res.ReferencePerUnit = fee
	res.ReferenceTotal = &refTotal
	res.Multiple = &multiple
	res.Status = s.classify(percent)
	res.Notes = append(res.Notes,
		fmt.Sprintf("billed amount is %d%% of the reference price", percent))

	if row.GlobalDays == "010" || row.GlobalDays == "090" {
		res.IsBundled = true
		res.Notes = append(res.Notes, fmt.Sprintf(
			"this price has a %s-day global period, so related follow-up visits may already be included", row.GlobalDays))
	}

	return res, trace
}

// findRow attempts the fee-schedule lookup with exact modifier first, then
// the base code, for the requested year and then the latest edition when
// different. It records every attempt in the trace and annotates the
// result when either fallback fires.
func (s *session) findRow(ctx context.Context, nc model.NormalizedCode, requested int, res *model.LineResult, trace *lineTrace) *model.FeeScheduleRow {
	years := []int{requested}
	if s.latestYear != 0 && s.latestYear != requested {
		years = append(years, s.latestYear)
	}

	modifiers := []string{nc.Modifier}
	if nc.Modifier != "" {
		modifiers = append(modifiers, "")
	}

	for _, year := range years {
		for _, modifier := range modifiers {
			row, err := s.store.FindRow(ctx, nc.Code, modifier, year)
			outcome := "not_found"
			if err != nil {
				outcome = "error: " + err.Error()
			} else if row != nil {
				outcome = "matched"
			}
			trace.queries = append(trace.queries, model.QueryAttempt{
				Code:     nc.Code,
				Modifier: modifier,
				Year:     year,
				Outcome:  outcome,
			})
			if err != nil {
				res.Notes = append(res.Notes,
					fmt.Sprintf("fee schedule lookup failed for %s (%d)", nc.Code, year))
				continue
			}
			if row == nil {
				continue
			}

			if year != requested {
				trace.usedYearFallback = true
				trace.fallbackReason = fmt.Sprintf(
					"fee schedule year %d is not available; used the latest edition (%d) instead", requested, year)
				res.Notes = append(res.Notes, trace.fallbackReason)
			}
			if modifier == "" && nc.Modifier != "" {
				res.ModifierFallbackUsed = true
				res.Notes = append(res.Notes, fmt.Sprintf(
					"no entry for modifier %s; used the base price for %s", nc.Modifier, nc.Code))
			}
			res.YearUsed = &row.Year
			return row
		}
	}
	return nil
}

// classify maps a billed-vs-reference percentage onto a fairness tier.
func (s *session) classify(percent int) model.LineStatus {
	switch {
	case percent <= s.fairMaxPercent:
		return model.LineFair
	case percent <= s.highMaxPercent:
		return model.LineHigh
	default:
		return model.LineVeryHigh
	}
}
