package projection

import (
	"budget/internal/core"
)

// weeksPerMonth is the average used for the monthly savings estimate.
const weeksPerMonth = 4.33

// Summary holds weekly-equivalent averages across the whole rule set.
// Figures are display-grade float64 currency units.
type Summary struct {
	WeeklyIncome   float64
	WeeklyExpenses float64
	WeeklyNet      float64
	MonthlySavings float64
}

// WeeklyAverages converts every rule's amount to a weekly-equivalent
// figure and totals them by kind. Weekly counts as-is, monthly as
// amount*12/52, annual and one-time as amount/52 (one-time amortized
// over a year). Fortnightly rules carry no weekly weighting.
func WeeklyAverages(rules []core.TransactionRule) Summary {
	var s Summary
	for _, rule := range rules {
		weekly := weeklyEquivalent(rule)
		if rule.Kind == core.Income {
			s.WeeklyIncome += weekly
		} else {
			s.WeeklyExpenses += weekly
		}
	}
	s.WeeklyNet = s.WeeklyIncome - s.WeeklyExpenses
	s.MonthlySavings = s.WeeklyNet * weeksPerMonth
	return s
}

func weeklyEquivalent(rule core.TransactionRule) float64 {
	amount := rule.Amount.Units()
	switch rule.Frequency {
	case core.Weekly:
		return amount
	case core.Monthly:
		return amount * 12 / 52
	case core.Annual:
		return amount / 52
	case core.OneTime:
		return amount / 52
	}
	return 0
}
