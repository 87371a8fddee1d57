package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/csvimport"
	"budget/internal/storage"
)

type capturingPublisher struct {
	messages []*amqp.RuleChangeMessage
	fail     bool
}

func (p *capturingPublisher) PublishRuleChange(_ context.Context, msg *amqp.RuleChangeMessage) error {
	if p.fail {
		return context.DeadlineExceeded
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newTestService(t *testing.T) (*RuleService, *capturingPublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	pub := &capturingPublisher{}
	return NewRuleService(repo, pub, csvimport.NewParser(csvimport.DefaultKeywords())), pub
}

func serviceRule(id string) core.TransactionRule {
	return core.TransactionRule{
		ID:        id,
		Title:     "Rent",
		Frequency: core.Monthly,
		Amount:    core.Money{Cents: 120000},
		Kind:      core.Expense,
		StartDate: core.NewDate(2024, 1, 15),
	}
}

func TestCreateRulePublishesChange(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	if err := svc.CreateRule(ctx, serviceRule("r1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.messages) != 1 || pub.messages[0].Change != amqp.ChangeCreated || pub.messages[0].RuleID != "r1" {
		t.Fatalf("unexpected notifications: %+v", pub.messages)
	}
}

func TestMutationsSurvivePublisherFailure(t *testing.T) {
	svc, pub := newTestService(t)
	pub.fail = true
	ctx := context.Background()

	if err := svc.CreateRule(ctx, serviceRule("r1")); err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}
	if _, err := svc.GetRule(ctx, "r1"); err != nil {
		t.Fatalf("rule not stored: %v", err)
	}
}

func TestUpdateRuleRequiresExisting(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.UpdateRule(context.Background(), serviceRule("ghost")); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}

func TestDeleteRulePublishesChange(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	if err := svc.CreateRule(ctx, serviceRule("r1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteRule(ctx, "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	last := pub.messages[len(pub.messages)-1]
	if last.Change != amqp.ChangeDeleted || last.RuleID != "r1" {
		t.Fatalf("unexpected last notification: %+v", last)
	}
}

func TestImportCSVReplacesRuleSet(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	today := core.NewDate(2024, 1, 15)

	if err := svc.CreateRule(ctx, serviceRule("old")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	csv := strings.Join([]string{
		"Item, Frequency, Amount",
		"Salary, Monthly, 2500",
		"Groceries, Weekly, 85.50",
	}, "\n")
	result, err := svc.ImportCSV(ctx, strings.NewReader(csv), today)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Rules) != 2 || len(result.Skipped) != 1 {
		t.Fatalf("unexpected import accounting: %s", result.Summary())
	}

	rules, err := svc.ListRules(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("previous rules not replaced, got %d", len(rules))
	}
	for _, r := range rules {
		if r.ID == "old" {
			t.Fatalf("stale rule survived the import")
		}
	}
	last := pub.messages[len(pub.messages)-1]
	if last.Change != amqp.ChangeImported {
		t.Fatalf("expected imported notification, got %+v", last)
	}
}

func TestImportCSVWithNoValidRowsLeavesStoreUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.CreateRule(ctx, serviceRule("keep")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.ImportCSV(ctx, strings.NewReader("Item, Frequency, Amount\n"), core.NewDate(2024, 1, 15)); err == nil {
		t.Fatalf("expected import failure")
	}
	rules, err := svc.ListRules(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "keep" {
		t.Fatalf("store modified by failed import: %+v", rules)
	}
}

func TestRecalculateDueDates(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	salary := serviceRule("income")
	salary.Title = "Salary"
	salary.Kind = core.Income
	rent := serviceRule("rent")
	if err := svc.CreateRule(ctx, salary); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateRule(ctx, rent); err != nil {
		t.Fatalf("create: %v", err)
	}

	today := core.NewDate(2024, 5, 1) // 2024-06-01 is a Saturday
	updated, err := svc.RecalculateDueDates(ctx, today)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updates, got %d", updated)
	}

	got, err := svc.GetRule(ctx, "income")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.NextDueDate.SameDay(core.NewDate(2024, 6, 1)) {
		t.Fatalf("monthly income due date: expected 2024-06-01, got %s", got.NextDueDate.Key())
	}
	got, err = svc.GetRule(ctx, "rent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.NextDueDate.SameDay(core.NewDate(2024, 6, 3)) {
		t.Fatalf("monthly expense due date: expected weekend shift to 2024-06-03, got %s", got.NextDueDate.Key())
	}

	last := pub.messages[len(pub.messages)-1]
	if last.Change != amqp.ChangeRecalculated {
		t.Fatalf("expected recalculated notification, got %+v", last)
	}
}

func TestSetBalancesPublishesChange(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	if err := svc.SetBalances(ctx, 150000, 500000); err != nil {
		t.Fatalf("set: %v", err)
	}
	bank, savings, err := svc.GetBalances(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if bank != 150000 || savings != 500000 {
		t.Fatalf("balances not stored: %d/%d", bank, savings)
	}
	last := pub.messages[len(pub.messages)-1]
	if last.Change != amqp.ChangeBalances {
		t.Fatalf("expected balances notification, got %+v", last)
	}
}
