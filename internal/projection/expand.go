package projection

import (
	"budget/internal/core"
)

// maxOccurrencesPerRule bounds expansion of a single rule. It guards
// against steps that never advance past the horizon; hitting the cap
// silently stops expansion for that rule.
const maxOccurrencesPerRule = 100

// Expand turns each transaction rule into its dated cash-flow events up
// to and including horizonEnd. Events are appended rule by rule in
// input order, each rule's occurrences chronologically; the overall
// list is not globally sorted. Aggregate and Forward sort internally.
func Expand(rules []core.TransactionRule, horizonEnd core.Date) []core.CashFlowEvent {
	var events []core.CashFlowEvent
	for _, rule := range rules {
		events = appendOccurrences(events, rule, horizonEnd)
	}
	return events
}

func appendOccurrences(events []core.CashFlowEvent, rule core.TransactionRule, horizonEnd core.Date) []core.CashFlowEvent {
	current, preset := rule.FirstOccurrence()
	if !preset {
		current = FirstDueDate(rule.Kind, rule.Frequency, rule.StartDate)
	}

	for count := 0; !current.After(horizonEnd.Time) && count < maxOccurrencesPerRule; count++ {
		events = append(events, core.CashFlowEvent{
			Date:         current,
			Amount:       rule.Amount,
			Kind:         rule.Kind,
			Description:  rule.Title,
			SourceRuleID: rule.ID,
		})
		current = nextOccurrence(current, rule.Frequency)
	}
	return events
}

// nextOccurrence advances a date by one frequency step. One-time rules
// jump two years, past any one-year horizon, so they emit exactly once.
func nextOccurrence(d core.Date, frequency core.Frequency) core.Date {
	switch frequency {
	case core.Weekly:
		return d.AddWeeks(1)
	case core.Fortnightly:
		return d.AddWeeks(2)
	case core.Monthly:
		return d.AddMonths(1)
	case core.Annual:
		return d.AddYears(1)
	default: // one-time and anything unknown terminates after one emission
		return d.AddYears(2)
	}
}
