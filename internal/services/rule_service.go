// Package services orchestrates the rule store, the projection engine
// and the notification bus. Storage writes come first; notifications
// are best-effort and never fail the caller.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/csvimport"
	"budget/internal/log"
	"budget/internal/projection"
	"budget/internal/storage"
)

// RuleChangePublisher pushes store-mutation notifications to whoever
// recomputes projections. A nil publisher disables notifications.
type RuleChangePublisher interface {
	PublishRuleChange(ctx context.Context, msg *amqp.RuleChangeMessage) error
}

// RuleService owns every mutation of the transaction-rule store.
type RuleService struct {
	storage   *storage.SQLiteRepository
	publisher RuleChangePublisher
	parser    *csvimport.Parser
}

func NewRuleService(storage *storage.SQLiteRepository, publisher RuleChangePublisher, parser *csvimport.Parser) *RuleService {
	return &RuleService{
		storage:   storage,
		publisher: publisher,
		parser:    parser,
	}
}

func (s *RuleService) CreateRule(ctx context.Context, rule core.TransactionRule) error {
	if err := s.storage.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	s.notify(ctx, rule.ID, amqp.ChangeCreated)
	return nil
}

func (s *RuleService) UpdateRule(ctx context.Context, rule core.TransactionRule) error {
	if _, err := s.storage.GetRule(ctx, rule.ID); err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if err := s.storage.SaveRule(ctx, rule); err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	s.notify(ctx, rule.ID, amqp.ChangeUpdated)
	return nil
}

func (s *RuleService) DeleteRule(ctx context.Context, id string) error {
	if err := s.storage.DeleteRule(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	s.notify(ctx, id, amqp.ChangeDeleted)
	return nil
}

func (s *RuleService) GetRule(ctx context.Context, id string) (core.TransactionRule, error) {
	return s.storage.GetRule(ctx, id)
}

func (s *RuleService) ListRules(ctx context.Context) ([]core.TransactionRule, error) {
	return s.storage.ListRules(ctx)
}

// ImportCSV parses a budgeting CSV and replaces the whole rule set with
// the parsed rules, the same wholesale replacement the bulk-load flow
// always performed. Skipped rows come back as diagnostics; zero valid
// rows aborts before anything is written.
func (s *RuleService) ImportCSV(ctx context.Context, r io.Reader, today core.Date) (*csvimport.Result, error) {
	result, err := s.parser.Parse(r, today)
	if err != nil {
		return result, fmt.Errorf("parse CSV: %w", err)
	}

	if err := s.storage.ReplaceRules(ctx, result.Rules); err != nil {
		return result, fmt.Errorf("store imported rules: %w", err)
	}

	slog.InfoContext(ctx, "CSV import complete",
		"processed", len(result.Rules),
		"skipped", len(result.Skipped))

	s.notify(ctx, "", amqp.ChangeImported)
	return result, nil
}

// RecalculateDueDates rewrites every rule's next due date from the
// due-date policy as of today and reports how many rules were updated.
func (s *RuleService) RecalculateDueDates(ctx context.Context, today core.Date) (int, error) {
	rules, err := s.storage.ListRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("recalculate due dates: %w", err)
	}

	updated := 0
	for _, rule := range rules {
		next := projection.FirstDueDate(rule.Kind, rule.Frequency, today)
		if err := s.storage.UpdateNextDueDate(ctx, rule.ID, next); err != nil {
			slog.ErrorContext(ctx, "Failed to update next due date",
				"rule_id", rule.ID,
				"error", err)
			continue
		}
		updated++
	}

	slog.InfoContext(ctx, "Recalculated due dates",
		"updated", updated,
		"total", len(rules),
		"as_of", today.Key())

	if updated > 0 {
		s.notify(ctx, "", amqp.ChangeRecalculated)
	}
	return updated, nil
}

// SetBalances updates the external bank/savings balances that seed the
// projection's running total.
func (s *RuleService) SetBalances(ctx context.Context, bankCents, savingsCents int64) error {
	if err := s.storage.SetBalances(ctx, bankCents, savingsCents); err != nil {
		return err
	}
	s.notify(ctx, "", amqp.ChangeBalances)
	return nil
}

func (s *RuleService) GetBalances(ctx context.Context) (bankCents, savingsCents int64, err error) {
	return s.storage.GetBalances(ctx)
}

// notify publishes best-effort: a failed or absent broker never fails
// the mutation that already hit storage.
func (s *RuleService) notify(ctx context.Context, ruleID string, change amqp.Change) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRuleChangeMessage(ruleID, change)
	if err := s.publisher.PublishRuleChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish rule change",
			log.FieldRuleID, ruleID,
			log.FieldChange, change,
			log.FieldError, err)
	}
}
