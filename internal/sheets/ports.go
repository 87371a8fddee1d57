package sheets

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound adapters.
type (
	// BalanceWriter exports a projected balance sheet to an external sink.
	BalanceWriter interface {
		WriteBalanceSheet(ctx context.Context, days []core.DayBalance) error
	}
)
