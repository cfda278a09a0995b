package benchmark

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
	"github.com/gyeh/billcheck/internal/refdata"
)

// Defaults for the fairness tiers and fan-out width.
const (
	DefaultFairMaxPercent = 200
	DefaultHighMaxPercent = 300
	DefaultWorkers        = 8
)

// Request is one benchmark invocation: the extracted line items plus the
// geographic hint and care setting they share.
type Request struct {
	LineItems []model.LineItem
	ZIP       string
	State     string
	Setting   model.CareSetting
}

// Engine resolves reference prices for billed line items. It holds no
// per-invocation state; Evaluate may be called concurrently.
type Engine struct {
	store refdata.Store
	log   zerolog.Logger

	// Workers bounds the per-line lookup fan-out.
	Workers int
	// FairMaxPercent and HighMaxPercent are the fairness tier boundaries.
	FairMaxPercent int
	HighMaxPercent int
}

func NewEngine(store refdata.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store:          store,
		log:            log,
		Workers:        DefaultWorkers,
		FairMaxPercent: DefaultFairMaxPercent,
		HighMaxPercent: DefaultHighMaxPercent,
	}
}

// Evaluate runs the full benchmark pipeline for one bill. It never returns
// an error: malformed input degrades per line, and the output carries an
// explicit status plus a reproducible debug trace.
func (e *Engine) Evaluate(ctx context.Context, req Request) model.BenchmarkOutput {
	invocationID := uuid.NewString()
	log := e.log.With().Str("invocation_id", invocationID).Logger()

	sess := newSession(ctx, e.store, log, req.ZIP, req.State, e.FairMaxPercent, e.HighMaxPercent)
	log.Info().
		Int("line_items", len(req.LineItems)).
		Str("locality_confidence", string(sess.confidence)).
		Int("latest_year", sess.latestYear).
		Msg("benchmark invocation started")

	items := make([]model.LineItem, len(req.LineItems))
	for i, li := range req.LineItems {
		if li.Setting == "" {
			li.Setting = req.Setting
		}
		if li.Setting == "" {
			li.Setting = model.SettingOffice
		}
		items[i] = li
	}

	results, traces := e.fanOut(ctx, sess, items)

	out := aggregate(sess, invocationID, results, traces)
	log.Info().
		Str("status", string(out.Status)).
		Float64("billed_total", out.Totals.BilledTotal).
		Msg("benchmark invocation complete")
	return out
}

// fanOut evaluates all line items with bounded parallelism, preserving
// input order in the results. A failed or cancelled item degrades to a
// missing line rather than aborting the batch.
func (e *Engine) fanOut(ctx context.Context, sess *session, items []model.LineItem) ([]model.LineResult, []lineTrace) {
	results := make([]model.LineResult, len(items))
	traces := make([]lineTrace, len(items))

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, li := range items {
		wg.Add(1)
		go func(idx int, item model.LineItem) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx], traces[idx] = cancelledLine(item)
				return
			}
			defer func() { <-sem }()

			results[idx], traces[idx] = sess.evaluateLine(ctx, item)
		}(i, li)
	}

	wg.Wait()
	return results, traces
}

func cancelledLine(li model.LineItem) (model.LineResult, lineTrace) {
	raw := li.RawCode
	if raw == "" {
		raw = li.Code
	}
	nc := normalize.Code(raw)
	return model.LineResult{
		Code:         nc.Code,
		Modifier:     nc.Modifier,
		Description:  li.Description,
		BilledAmount: li.BilledAmount,
		Units:        li.EffectiveUnits(),
		Status:       model.LineUnknown,
		MatchStatus:  model.MatchMissing,
		Notes:        []string{"lookup cancelled before completion"},
	}, lineTrace{raw: raw, normalized: nc}
}

// aggregate rolls per-line results into the bill-level summary and
// assembles the debug trace in input order.
func aggregate(sess *session, invocationID string, results []model.LineResult, traces []lineTrace) model.BenchmarkOutput {
	out := model.BenchmarkOutput{
		LineResults: results,
		DebugTrace: model.DebugTrace{
			InvocationID:    invocationID,
			RawCodes:        []string{},
			NormalizedCodes: []model.NormalizedCode{},
			MatchedCodes:    []string{},
			MissingCodes:    []string{},
			Queries:         []model.QueryAttempt{},
		},
	}

	validCodes := 0
	matched := 0
	var billedTotal, referenceTotal float64
	requestedYears := []int{}

	for i := range results {
		res := &results[i]
		trace := &traces[i]

		out.DebugTrace.RawCodes = append(out.DebugTrace.RawCodes, trace.raw)
		out.DebugTrace.NormalizedCodes = append(out.DebugTrace.NormalizedCodes, trace.normalized)
		out.DebugTrace.Queries = append(out.DebugTrace.Queries, trace.queries...)

		if normalize.IsValidBillableCode(res.Code) {
			validCodes++
		}
		if trace.requestedYear != 0 && !slices.Contains(requestedYears, trace.requestedYear) {
			requestedYears = append(requestedYears, trace.requestedYear)
		}

		if res.MatchStatus == model.MatchMatched {
			matched++
			out.DebugTrace.MatchedCodes = append(out.DebugTrace.MatchedCodes, res.Code)
			billedTotal += res.BilledAmount
			if res.ReferenceTotal != nil {
				referenceTotal += *res.ReferenceTotal
			}
		} else {
			out.DebugTrace.MissingCodes = append(out.DebugTrace.MissingCodes, res.Code)
		}

		if trace.usedYearFallback && !out.Metadata.UsedYearFallback {
			out.Metadata.UsedYearFallback = true
			reason := trace.fallbackReason
			out.Metadata.FallbackReason = &reason
		}
	}

	out.Totals.BilledTotal = normalize.Round2(billedTotal)
	if matched > 0 && referenceTotal > 0 {
		ref := normalize.Round2(referenceTotal)
		mult := normalize.Round2(billedTotal / referenceTotal)
		diff := normalize.Round2(billedTotal - referenceTotal)
		out.Totals.ReferenceTotal = &ref
		out.Totals.Multiple = &mult
		out.Totals.Difference = &diff
	}

	out.Metadata.LocalityConfidence = sess.confidence
	if sess.locality != nil {
		name := sess.locality.LocalityName
		out.Metadata.LocalityName = &name
	}
	out.Metadata.RequestedYears = requestedYears
	switch {
	case out.Metadata.UsedYearFallback || len(requestedYears) == 0:
		out.Metadata.YearUsed = sess.latestYear
	default:
		out.Metadata.YearUsed = requestedYears[0]
	}

	switch {
	case validCodes == 0:
		out.Status = model.BenchmarkNoCodes
	case matched == 0:
		out.Status = model.BenchmarkNoMatches
	case matched < len(results):
		out.Status = model.BenchmarkPartial
	default:
		out.Status = model.BenchmarkOK
	}

	return out
}
