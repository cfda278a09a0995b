// Package refdata provides read-only access to the two external reference
// data stores: the fee schedule and the locality adjustments. Both stores
// are populated by an out-of-scope import pipeline; this package only
// queries them.
package refdata

import (
	"context"

	"github.com/gyeh/billcheck/internal/model"
)

// FeeScheduleStore is the queryable government fee schedule. FindRow
// returns (nil, nil) when no billable row exists for the key; errors are
// reserved for infrastructure faults.
type FeeScheduleStore interface {
	// FindRow looks up the row for an exact (code, modifier, year) key,
	// restricted to billable status flags.
	FindRow(ctx context.Context, code, modifier string, year int) (*model.FeeScheduleRow, error)

	// LatestYear returns the newest fee-schedule edition year present,
	// or 0 when the store is empty.
	LatestYear(ctx context.Context) (int, error)
}

// LocalityStore resolves geography into adjustment factors. Both lookups
// return (nil, nil) on no match.
type LocalityStore interface {
	ByZIP(ctx context.Context, zip string) (*model.LocalityAdjustment, error)
	ByState(ctx context.Context, state string) (*model.LocalityAdjustment, error)
}

// Store is the combined collaborator surface the engine needs.
type Store interface {
	FeeScheduleStore
	LocalityStore
}
