package projection

import (
	"budget/internal/core"
)

// DefaultHorizonDays is the forward window balances are computed over.
const DefaultHorizonDays = 365

// Projection bundles one complete recomputation: the expanded event
// list and the daily balance sheet built from it. Both are fresh values
// owned by the caller.
type Projection struct {
	Events   []core.CashFlowEvent
	Balances *BalanceSheet
}

// Project runs the full pipeline for a rule snapshot: expand every rule
// over a one-year horizon from now, then aggregate a daily running
// balance seeded with startingCents through now+365 days. It is the
// synchronous recompute entry point the store's mutation notifications
// trigger; there is no incremental path, each call rebuilds everything.
func Project(rules []core.TransactionRule, startingCents int64, now core.Date) Projection {
	return ProjectHorizon(rules, startingCents, now, DefaultHorizonDays)
}

// ProjectHorizon is Project with a caller-chosen balance horizon in days.
// Expansion still covers one year so recurring events deep in a longer
// horizon are not silently missing.
func ProjectHorizon(rules []core.TransactionRule, startingCents int64, now core.Date, horizonDays int) Projection {
	expandEnd := now.AddYears(1)
	if longer := now.AddDays(horizonDays); longer.After(expandEnd.Time) {
		expandEnd = longer
	}
	events := Expand(rules, expandEnd)

	var start core.Date // zero: let the aggregator start at the earliest event
	if len(events) == 0 {
		start = now
	}
	balances := Aggregate(events, startingCents, start, now.AddDays(horizonDays))

	return Projection{Events: events, Balances: balances}
}
