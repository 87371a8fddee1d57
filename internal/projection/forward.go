package projection

import (
	"sort"

	"budget/internal/core"
)

// DayGroup is one day of the forward view: the day's events plus the
// balance window around them, re-derived from the opening balance
// independently of the aggregator's own running balance.
type DayGroup struct {
	Date            core.Date
	Events          []core.CashFlowEvent
	DailyIncome     int64
	DailyExpenses   int64
	DailyNet        int64
	StartingBalance int64
	EndingBalance   int64
}

// OpeningBalance selects the balance the forward view starts from. For
// today or a future date that is the current external balance (bank +
// savings, supplied by the caller); for a past date it is the balance
// the aggregator recorded for that day, falling back to the current
// balance when the day is outside the sheet.
func OpeningBalance(selected, today core.Date, sheet *BalanceSheet, currentCents int64) int64 {
	if selected.SameDay(today) || selected.After(today.Time) {
		return currentCents
	}
	if sheet != nil {
		if day, ok := sheet.At(selected); ok {
			return day.Balance
		}
	}
	return currentCents
}

// Forward filters events to those on or after the selected date, groups
// them by day in chronological order and derives a running balance
// starting at openingCents. By construction the resulting balances
// agree with the aggregator's when both are seeded with the same
// external balance.
func Forward(events []core.CashFlowEvent, selected core.Date, openingCents int64) []DayGroup {
	var kept []core.CashFlowEvent
	for _, ev := range events {
		if !ev.Date.Before(selected.Time) {
			kept = append(kept, ev)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date.Time)
	})

	var groups []DayGroup
	running := openingCents
	for i := 0; i < len(kept); {
		day := kept[i].Date
		group := DayGroup{Date: day, StartingBalance: running}
		for i < len(kept) && kept[i].Date.SameDay(day) {
			ev := kept[i]
			group.Events = append(group.Events, ev)
			if ev.Kind == core.Income {
				group.DailyIncome += ev.Amount.Cents
			} else {
				group.DailyExpenses += ev.Amount.Cents
			}
			i++
		}
		group.DailyNet = group.DailyIncome - group.DailyExpenses
		running += group.DailyNet
		group.EndingBalance = running
		groups = append(groups, group)
	}
	return groups
}
