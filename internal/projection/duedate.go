// Package projection implements the recurrence projection and
// balance-aggregation engine: due-date policy, rule expansion into dated
// cash-flow events, per-day balance aggregation and the derived
// forward/summary views. Everything here is a pure function of its
// inputs; the engine holds no state between runs.
package projection

import (
	"time"

	"budget/internal/core"
)

// DueDateRule is the strategy interface for computing the first
// occurrence date of a recurring transaction. Each implementation
// covers one frequency and may differentiate by kind.
type DueDateRule interface {
	FirstDue(kind core.Kind, reference core.Date) core.Date
}

// monthlyRule: income lands on the first of the following month;
// expenses shift weekend firsts forward to Monday.
type monthlyRule struct{}

func (monthlyRule) FirstDue(kind core.Kind, reference core.Date) core.Date {
	first := reference.StartOfNextMonth()
	if kind == core.Income {
		return first
	}
	return shiftWeekendToMonday(first)
}

// weeklyRule: income pays out on the next Friday strictly after the
// reference date. Weekly expenses keep the reference date.
type weeklyRule struct{}

func (weeklyRule) FirstDue(kind core.Kind, reference core.Date) core.Date {
	if kind == core.Income {
		return reference.NextFriday()
	}
	return reference
}

// fortnightlyRule: income starts on the next Friday (subsequent
// occurrences step by two weeks); expenses fall due two weeks out,
// weekend-shifted to Monday.
type fortnightlyRule struct{}

func (fortnightlyRule) FirstDue(kind core.Kind, reference core.Date) core.Date {
	if kind == core.Income {
		return reference.NextFriday()
	}
	return shiftWeekendToMonday(reference.AddWeeks(2))
}

// dueDateRules maps frequencies to their first-due strategies. Annual
// and one-time rules are deliberately absent: they start on the
// reference date itself.
var dueDateRules = map[core.Frequency]DueDateRule{
	core.Monthly:     monthlyRule{},
	core.Weekly:      weeklyRule{},
	core.Fortnightly: fortnightlyRule{},
}

// RegisterDueDateRule installs a custom first-due strategy for a
// frequency, replacing any existing one.
func RegisterDueDateRule(frequency core.Frequency, rule DueDateRule) {
	dueDateRules[frequency] = rule
}

// FirstDueDate computes the first occurrence date of a recurring
// transaction given its kind and frequency. Combinations without a
// registered strategy fall through to the reference date unchanged;
// that identity default is by contract, not an error.
func FirstDueDate(kind core.Kind, frequency core.Frequency, reference core.Date) core.Date {
	rule, ok := dueDateRules[frequency]
	if !ok {
		return reference
	}
	return rule.FirstDue(kind, reference)
}

// shiftWeekendToMonday moves Saturday two days and Sunday one day
// forward so the result is the following Monday; weekdays pass through.
func shiftWeekendToMonday(d core.Date) core.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(2)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}
