package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/projection"
	"budget/internal/storage"
)

// ProjectionService recomputes the projection pipeline from a fresh
// store snapshot. Every call rebuilds everything; there is no cache and
// no partially updated result, a run either completes or the caller
// keeps whatever it had.
type ProjectionService struct {
	storage *storage.SQLiteRepository
}

func NewProjectionService(storage *storage.SQLiteRepository) *ProjectionService {
	return &ProjectionService{storage: storage}
}

// Snapshot reads the immutable inputs of one projection run: the rule
// list and the current external balance (bank + savings) in cents.
func (s *ProjectionService) Snapshot(ctx context.Context) ([]core.TransactionRule, int64, error) {
	rules, err := s.storage.ListRules(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load rule snapshot: %w", err)
	}
	bank, savings, err := s.storage.GetBalances(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load balances: %w", err)
	}
	return rules, bank + savings, nil
}

// Project runs the full expand/aggregate pipeline as of now and returns
// the projection plus the external balance it was seeded with.
func (s *ProjectionService) Project(ctx context.Context, now core.Date) (projection.Projection, int64, error) {
	rules, currentCents, err := s.Snapshot(ctx)
	if err != nil {
		return projection.Projection{}, 0, err
	}

	proj := projection.Project(rules, currentCents, now)

	slog.DebugContext(ctx, "Projection recomputed",
		"rules", len(rules),
		"events", len(proj.Events),
		"days", proj.Balances.Len(),
		"as_of", now.Key())
	return proj, currentCents, nil
}

// ForwardView derives the forward grouping for a selected date on top
// of a fresh projection run.
func (s *ProjectionService) ForwardView(ctx context.Context, selected, now core.Date) ([]projection.DayGroup, int64, error) {
	proj, currentCents, err := s.Project(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	opening := projection.OpeningBalance(selected, now, proj.Balances, currentCents)
	return projection.Forward(proj.Events, selected, opening), opening, nil
}

// Summary computes the weekly/monthly averages over the current rule set.
func (s *ProjectionService) Summary(ctx context.Context) (projection.Summary, error) {
	rules, err := s.storage.ListRules(ctx)
	if err != nil {
		return projection.Summary{}, fmt.Errorf("load rules for summary: %w", err)
	}
	return projection.WeeklyAverages(rules), nil
}
