package projection

import (
	"testing"

	"budget/internal/core"
)

func TestProjectEmptyRulesStartsAtNow(t *testing.T) {
	now := core.NewDate(2024, 3, 10)
	proj := Project(nil, 50000, now)

	if len(proj.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(proj.Events))
	}
	if proj.Balances.Len() != DefaultHorizonDays+1 {
		t.Fatalf("expected %d days, got %d", DefaultHorizonDays+1, proj.Balances.Len())
	}
	first, ok := proj.Balances.At(now)
	if !ok {
		t.Fatalf("expected a day at %s", now.Key())
	}
	if first.Balance != 50000 {
		t.Fatalf("expected starting balance carried, got %d", first.Balance)
	}
}

func TestProjectHorizonTrimsDays(t *testing.T) {
	now := core.NewDate(2024, 3, 10)
	r := core.TransactionRule{
		ID:          "r1",
		Title:       "Rent",
		Frequency:   core.Monthly,
		Amount:      core.Money{Cents: 90000},
		Kind:        core.Expense,
		StartDate:   now,
		NextDueDate: now,
	}

	short := ProjectHorizon([]core.TransactionRule{r}, 200000, now, 30)
	long := ProjectHorizon([]core.TransactionRule{r}, 200000, now, 90)

	if short.Balances.Len() != 31 {
		t.Fatalf("expected 31 days, got %d", short.Balances.Len())
	}
	if long.Balances.Len() != 91 {
		t.Fatalf("expected 91 days, got %d", long.Balances.Len())
	}

	// Shared days agree regardless of horizon length.
	day := now.AddDays(30)
	a, _ := short.Balances.At(day)
	b, _ := long.Balances.At(day)
	if a.Balance != b.Balance {
		t.Fatalf("balances diverge at %s: %d vs %d", day.Key(), a.Balance, b.Balance)
	}
}

func TestProjectHorizonBeyondOneYearStillHasEvents(t *testing.T) {
	now := core.NewDate(2024, 1, 1)
	r := core.TransactionRule{
		ID:          "r1",
		Title:       "Insurance",
		Frequency:   core.Annual,
		Amount:      core.Money{Cents: 30000},
		Kind:        core.Expense,
		StartDate:   now,
		NextDueDate: now,
	}

	proj := ProjectHorizon([]core.TransactionRule{r}, 100000, now, 800)

	// Two annual occurrences beyond the first fall inside 800 days.
	if len(proj.Events) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(proj.Events))
	}
	last, ok := proj.Balances.At(core.NewDate(2026, 1, 1))
	if !ok {
		t.Fatal("expected the 2026 occurrence day in the sheet")
	}
	if last.DailyExpenses != 30000 {
		t.Fatalf("expected 30000 expense on 2026-01-01, got %d", last.DailyExpenses)
	}
}
