package refdata

import (
	"context"
	"slices"

	"github.com/gyeh/billcheck/internal/model"
)

type feeKey struct {
	code     string
	modifier string
	year     int
}

// MemStore is an in-memory Store. It backs parquet snapshot files and unit
// tests. Loading is not goroutine-safe; once loaded it is read-only and
// safe for concurrent lookups.
type MemStore struct {
	rows    map[feeKey]*model.FeeScheduleRow
	years   []int
	byZIP   map[string]*model.LocalityAdjustment
	byState map[string]*model.LocalityAdjustment
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		rows:    make(map[feeKey]*model.FeeScheduleRow),
		byZIP:   make(map[string]*model.LocalityAdjustment),
		byState: make(map[string]*model.LocalityAdjustment),
	}
}

// AddRow registers a fee-schedule row, replacing any row with the same key.
func (s *MemStore) AddRow(r model.FeeScheduleRow) {
	s.rows[feeKey{r.Code, r.Modifier, r.Year}] = &r
	if !slices.Contains(s.years, r.Year) {
		s.years = append(s.years, r.Year)
	}
}

// AddLocality registers a locality, reachable by state code and, when a
// ZIP is attached, by ZIP. The first locality wins per state.
func (s *MemStore) AddLocality(l model.LocalityAdjustment) {
	if _, ok := s.byState[l.StateCode]; !ok {
		s.byState[l.StateCode] = &l
	}
	if l.ZIPCode != nil && *l.ZIPCode != "" {
		s.byZIP[*l.ZIPCode] = &l
	}
}

func (s *MemStore) FindRow(_ context.Context, code, modifier string, year int) (*model.FeeScheduleRow, error) {
	r, ok := s.rows[feeKey{code, modifier, year}]
	if !ok || !slices.Contains(model.BillableStatusFlags, r.StatusFlag) {
		return nil, nil
	}
	return r, nil
}

func (s *MemStore) LatestYear(_ context.Context) (int, error) {
	if len(s.years) == 0 {
		return 0, nil
	}
	return slices.Max(s.years), nil
}

func (s *MemStore) ByZIP(_ context.Context, zip string) (*model.LocalityAdjustment, error) {
	return s.byZIP[zip], nil
}

func (s *MemStore) ByState(_ context.Context, state string) (*model.LocalityAdjustment, error) {
	return s.byState[state], nil
}
