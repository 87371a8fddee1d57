package services

import (
	"context"
	"path/filepath"
	"testing"

	"budget/internal/core"
	"budget/internal/csvimport"
	"budget/internal/storage"
)

func newProjectionFixture(t *testing.T) (*RuleService, *ProjectionService) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	rules := NewRuleService(repo, nil, csvimport.NewParser(csvimport.DefaultKeywords()))
	return rules, NewProjectionService(repo)
}

func TestProjectFromStore(t *testing.T) {
	rules, proj := newProjectionFixture(t)
	ctx := context.Background()
	today := core.NewDate(2024, 1, 15)

	salary := core.TransactionRule{
		ID:        "salary",
		Title:     "Salary",
		Frequency: core.Monthly,
		Amount:    core.Money{Cents: 250000},
		Kind:      core.Income,
		StartDate: today,
	}
	if err := rules.CreateRule(ctx, salary); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := rules.SetBalances(ctx, 40000, 10000); err != nil {
		t.Fatalf("balances: %v", err)
	}

	result, currentCents, err := proj.Project(ctx, today)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if currentCents != 50000 {
		t.Fatalf("expected 50000 cents external balance, got %d", currentCents)
	}

	// First salary lands on 2024-02-01; the balance steps up there.
	day, ok := result.Balances.Get("2024-02-01")
	if !ok {
		t.Fatalf("missing payday bucket")
	}
	if day.DailyIncome != 250000 || day.Balance != 300000 {
		t.Fatalf("payday: income=%d balance=%d", day.DailyIncome, day.Balance)
	}
}

func TestProjectEmptyStore(t *testing.T) {
	_, proj := newProjectionFixture(t)
	today := core.NewDate(2024, 1, 15)

	result, _, err := proj.Project(context.Background(), today)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if result.Balances.Len() == 0 {
		t.Fatalf("expected a day-by-day sheet even with no rules")
	}
	if day, ok := result.Balances.At(today); !ok || day.Balance != 0 {
		t.Fatalf("expected flat zero balance, got %+v", day)
	}
}

func TestForwardViewMatchesAggregatedBalance(t *testing.T) {
	rules, proj := newProjectionFixture(t)
	ctx := context.Background()
	today := core.NewDate(2024, 1, 15)

	groceries := core.TransactionRule{
		ID:        "groceries",
		Title:     "Groceries",
		Frequency: core.Weekly,
		Amount:    core.Money{Cents: 9000},
		Kind:      core.Expense,
		StartDate: today,
	}
	if err := rules.CreateRule(ctx, groceries); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := rules.SetBalances(ctx, 100000, 0); err != nil {
		t.Fatalf("balances: %v", err)
	}

	groups, opening, err := proj.ForwardView(ctx, today, today)
	if err != nil {
		t.Fatalf("forward view: %v", err)
	}
	if opening != 100000 {
		t.Fatalf("expected opening 100000, got %d", opening)
	}

	result, _, err := proj.Project(ctx, today)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	for _, g := range groups {
		day, ok := result.Balances.At(g.Date)
		if !ok {
			continue
		}
		if g.EndingBalance != day.Balance {
			t.Fatalf("%s: forward %d != aggregated %d", g.Date.Key(), g.EndingBalance, day.Balance)
		}
	}
}

func TestSummaryFromStore(t *testing.T) {
	rules, proj := newProjectionFixture(t)
	ctx := context.Background()

	wages := core.TransactionRule{
		ID:        "wages",
		Title:     "Wages",
		Frequency: core.Weekly,
		Amount:    core.Money{Cents: 52000},
		Kind:      core.Income,
		StartDate: core.NewDate(2024, 1, 1),
	}
	if err := rules.CreateRule(ctx, wages); err != nil {
		t.Fatalf("create: %v", err)
	}

	s, err := proj.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.WeeklyIncome != 520 {
		t.Fatalf("expected weekly income 520, got %v", s.WeeklyIncome)
	}
}
