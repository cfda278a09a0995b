package benchmark

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/refdata"
)

// session holds the resolved state shared by every line item of one
// invocation: the locality adjustment and the latest fee-schedule year.
// A fresh session is built at the top of every Evaluate call; nothing is
// cached at package level, so concurrent invocations for different bills
// never observe each other's lookups.
type session struct {
	store      refdata.Store
	locality   *model.LocalityAdjustment
	confidence model.LocalityConfidence
	latestYear int

	fairMaxPercent int
	highMaxPercent int
}

// newSession resolves locality and latest year once. Lookup failures
// degrade to national defaults / no year data rather than failing the
// invocation.
func newSession(ctx context.Context, store refdata.Store, log zerolog.Logger, zip, state string, fairMax, highMax int) *session {
	s := &session{
		store:          store,
		confidence:     model.LocalityNationalEstimate,
		fairMaxPercent: fairMax,
		highMaxPercent: highMax,
	}

	loc, conf, err := resolveLocality(ctx, store, zip, state)
	if err != nil {
		log.Warn().Err(err).Msg("locality lookup failed, using national defaults")
	} else {
		s.locality = loc
		s.confidence = conf
	}

	latest, err := store.LatestYear(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("latest fee schedule year lookup failed")
	} else {
		s.latestYear = latest
	}

	return s
}

// resolveLocality tries ZIP first, then state, then gives up to the
// national default. No match is not an error.
func resolveLocality(ctx context.Context, store refdata.LocalityStore, zip, state string) (*model.LocalityAdjustment, model.LocalityConfidence, error) {
	if zip != "" {
		loc, err := store.ByZIP(ctx, zip)
		if err != nil {
			return nil, model.LocalityNationalEstimate, err
		}
		if loc != nil {
			return loc, model.LocalityLocalAdjusted, nil
		}
	}
	if state != "" {
		loc, err := store.ByState(ctx, state)
		if err != nil {
			return nil, model.LocalityNationalEstimate, err
		}
		if loc != nil {
			return loc, model.LocalityLocalAdjusted, nil
		}
	}
	return nil, model.LocalityNationalEstimate, nil
}

// requestedYear derives the fee-schedule edition to query for a line:
// the service-date year when present, else the latest available edition.
func (s *session) requestedYear(li *model.LineItem) int {
	if li.ServiceDate != nil {
		return li.ServiceDate.Year()
	}
	return s.latestYear
}
