package projection

import (
	"sort"

	"budget/internal/core"
)

// BalanceSheet is the aggregator's output: one DayBalance per calendar
// day over the horizon, keyed by the canonical YYYY-MM-DD string and
// iterable in day order. It is a value computed fresh per projection
// run; callers own it and no run shares state with the next.
type BalanceSheet struct {
	days  map[string]core.DayBalance
	order []string
}

// Get looks a day up by its canonical YYYY-MM-DD key.
func (b *BalanceSheet) Get(key string) (core.DayBalance, bool) {
	day, ok := b.days[key]
	return day, ok
}

// At looks a day up by date.
func (b *BalanceSheet) At(d core.Date) (core.DayBalance, bool) {
	return b.Get(d.Key())
}

// Days returns all day balances in calendar order.
func (b *BalanceSheet) Days() []core.DayBalance {
	out := make([]core.DayBalance, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.days[key])
	}
	return out
}

// Len returns the number of days covered.
func (b *BalanceSheet) Len() int {
	return len(b.order)
}

// Aggregate folds dated cash-flow events into a per-day running
// balance. Events are stable-sorted chronologically (ties keep input
// order), then every calendar day from horizonStart through horizonEnd
// is bucketed: income and expenses are summed separately and the
// running balance, seeded with startingCents, advances by their
// difference. A zero horizonStart means "start at the earliest event
// date". Re-running with identical inputs yields identical output.
func Aggregate(events []core.CashFlowEvent, startingCents int64, horizonStart, horizonEnd core.Date) *BalanceSheet {
	sorted := make([]core.CashFlowEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	start := horizonStart
	if start.IsZero() {
		if len(sorted) > 0 {
			start = sorted[0].Date
		} else {
			start = core.Today()
		}
	}

	sheet := &BalanceSheet{days: make(map[string]core.DayBalance)}
	running := startingCents
	next := 0 // index of the first event not yet bucketed

	for day := start; !day.After(horizonEnd.Time); day = day.AddDays(1) {
		var dayEvents []core.CashFlowEvent
		var income, expenses int64

		// Events before this day can only occur on the first iteration,
		// when the caller's horizonStart is later than the earliest event.
		for next < len(sorted) && sorted[next].Date.Before(day.Time) {
			next++
		}
		for next < len(sorted) && sorted[next].Date.SameDay(day) {
			ev := sorted[next]
			dayEvents = append(dayEvents, ev)
			if ev.Kind == core.Income {
				income += ev.Amount.Cents
			} else {
				expenses += ev.Amount.Cents
			}
			next++
		}

		running += income - expenses
		key := day.Key()
		sheet.days[key] = core.DayBalance{
			Date:          day,
			Balance:       running,
			DailyIncome:   income,
			DailyExpenses: expenses,
			Events:        dayEvents,
		}
		sheet.order = append(sheet.order, key)
	}

	return sheet
}
