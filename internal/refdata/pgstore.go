package refdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/billcheck/internal/model"
	embedsql "github.com/gyeh/billcheck/internal/sql"
)

// PGStore serves reference lookups from Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) FindRow(ctx context.Context, code, modifier string, year int) (*model.FeeScheduleRow, error) {
	var r model.FeeScheduleRow
	err := s.pool.QueryRow(ctx, embedsql.FeeRow, code, modifier, year, model.BillableStatusFlags).Scan(
		&r.Code, &r.Modifier, &r.Year, &r.Description,
		&r.WorkRVU, &r.PracticeExpenseRVUFacility, &r.PracticeExpenseRVUNonFacility, &r.MalpracticeRVU,
		&r.ConversionFactor, &r.DirectFeeFacility, &r.DirectFeeNonFacility,
		&r.GlobalDays, &r.StatusFlag,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fee schedule lookup %s/%s/%d: %w", code, modifier, year, err)
	}
	return &r, nil
}

func (s *PGStore) LatestYear(ctx context.Context) (int, error) {
	var year *int
	if err := s.pool.QueryRow(ctx, embedsql.LatestYear).Scan(&year); err != nil {
		return 0, fmt.Errorf("latest fee schedule year: %w", err)
	}
	if year == nil {
		return 0, nil
	}
	return *year, nil
}

func (s *PGStore) ByZIP(ctx context.Context, zip string) (*model.LocalityAdjustment, error) {
	var l model.LocalityAdjustment
	err := s.pool.QueryRow(ctx, embedsql.LocalityByZIP, zip).Scan(
		&l.LocalityID, &l.StateCode, &l.LocalityName, &l.ZIPCode,
		&l.WorkFactor, &l.PracticeExpenseFactor, &l.MalpracticeFactor,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locality by zip %s: %w", zip, err)
	}
	return &l, nil
}

func (s *PGStore) ByState(ctx context.Context, state string) (*model.LocalityAdjustment, error) {
	var l model.LocalityAdjustment
	err := s.pool.QueryRow(ctx, embedsql.LocalityByState, state).Scan(
		&l.LocalityID, &l.StateCode, &l.LocalityName,
		&l.WorkFactor, &l.PracticeExpenseFactor, &l.MalpracticeFactor,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locality by state %s: %w", state, err)
	}
	return &l, nil
}
