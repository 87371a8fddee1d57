// Package storage persists transaction rules and account balances in
// SQLite. The projection engine never touches storage; it receives rule
// snapshots read here and returns values the caller owns.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// ErrRuleNotFound is returned when a rule ID has no row.
var ErrRuleNotFound = errors.New("transaction rule not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRule inserts a rule or overwrites it wholesale when the ID exists.
func (r *SQLiteRepository) SaveRule(ctx context.Context, rule core.TransactionRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transaction_rules (id, title, frequency, kind, amount_cents, start_date, next_due_date, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			frequency = excluded.frequency,
			kind = excluded.kind,
			amount_cents = excluded.amount_cents,
			start_date = excluded.start_date,
			next_due_date = excluded.next_due_date,
			category = excluded.category`,
		rule.ID, rule.Title, string(rule.Frequency), string(rule.Kind),
		rule.Amount.Cents, rule.StartDate.Key(), nullableDate(rule.NextDueDate), rule.Category)
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}

	slog.InfoContext(ctx, "Rule saved",
		"rule_id", rule.ID,
		"title", rule.Title,
		"frequency", rule.Frequency,
		"kind", rule.Kind,
		"amount_cents", rule.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) GetRule(ctx context.Context, id string) (core.TransactionRule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, frequency, kind, amount_cents, start_date, next_due_date, category
		FROM transaction_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionRule{}, ErrRuleNotFound
	}
	if err != nil {
		return core.TransactionRule{}, fmt.Errorf("get rule %s: %w", id, err)
	}
	return rule, nil
}

// ListRules returns all rules in insertion order. The order matters:
// expansion emits events rule by rule in this order.
func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.TransactionRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, frequency, kind, amount_cents, start_date, next_due_date, category
		FROM transaction_rules ORDER BY position, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []core.TransactionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transaction_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// ReplaceRules swaps the whole rule set atomically; a bulk CSV load
// clears previous data the same way the manual flow replaces one rule.
func (r *SQLiteRepository) ReplaceRules(ctx context.Context, rules []core.TransactionRule) error {
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("rule %s: %w", rule.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_rules`); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	for i, rule := range rules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transaction_rules (id, title, frequency, kind, amount_cents, start_date, next_due_date, category, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, rule.Title, string(rule.Frequency), string(rule.Kind),
			rule.Amount.Cents, rule.StartDate.Key(), nullableDate(rule.NextDueDate), rule.Category, i)
		if err != nil {
			return fmt.Errorf("insert rule %s: %w", rule.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Rule set replaced", "count", len(rules))
	return nil
}

// UpdateNextDueDate rewrites a single rule's pre-computed next
// occurrence, used by the bulk recalculate operation.
func (r *SQLiteRepository) UpdateNextDueDate(ctx context.Context, id string, next core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transaction_rules SET next_due_date = ? WHERE id = ?`, nullableDate(next), id)
	if err != nil {
		return fmt.Errorf("update next due date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update next due date affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// GetBalances returns the external account balances (bank, savings) in cents.
func (r *SQLiteRepository) GetBalances(ctx context.Context) (int64, int64, error) {
	var bank, savings int64
	err := r.db.QueryRowContext(ctx,
		`SELECT bank_cents, savings_cents FROM account_balances WHERE id = 1`).Scan(&bank, &savings)
	if err != nil {
		return 0, 0, fmt.Errorf("get balances: %w", err)
	}
	return bank, savings, nil
}

func (r *SQLiteRepository) SetBalances(ctx context.Context, bankCents, savingsCents int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE account_balances
		SET bank_cents = ?, savings_cents = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1`, bankCents, savingsCents)
	if err != nil {
		return fmt.Errorf("set balances: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (core.TransactionRule, error) {
	var (
		rule      core.TransactionRule
		frequency string
		kind      string
		startKey  string
		nextKey   sql.NullString
	)
	err := row.Scan(&rule.ID, &rule.Title, &frequency, &kind,
		&rule.Amount.Cents, &startKey, &nextKey, &rule.Category)
	if err != nil {
		return core.TransactionRule{}, err
	}
	rule.Frequency = core.Frequency(frequency)
	rule.Kind = core.Kind(kind)
	if rule.StartDate, err = core.ParseDateKey(startKey); err != nil {
		return core.TransactionRule{}, fmt.Errorf("start date %q: %w", startKey, err)
	}
	if nextKey.Valid {
		if rule.NextDueDate, err = core.ParseDateKey(nextKey.String); err != nil {
			return core.TransactionRule{}, fmt.Errorf("next due date %q: %w", nextKey.String, err)
		}
	}
	return rule, nil
}

func nullableDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Key()
}
