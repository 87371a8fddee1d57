package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/projection"
	"budget/internal/services"
	"budget/internal/sheets"
)

// ProjectionWorker recomputes the balance projection whenever the rule
// store changes and exports the result to an external balance sheet.
// It is also driven on a timer as a backup in case change messages are
// lost.
type ProjectionWorker struct {
	projections *services.ProjectionService
	writer      sheets.BalanceWriter
	horizonDays int
}

func NewProjectionWorker(projections *services.ProjectionService, writer sheets.BalanceWriter, horizonDays int) *ProjectionWorker {
	if horizonDays < 1 {
		horizonDays = projection.DefaultHorizonDays
	}
	return &ProjectionWorker{
		projections: projections,
		writer:      writer,
		horizonDays: horizonDays,
	}
}

// HandleRuleChange processes a single change message from AMQP by
// recomputing the full projection and exporting it. The message only
// signals that something changed; the recompute always works from a
// fresh store snapshot.
func (w *ProjectionWorker) HandleRuleChange(ctx context.Context, msg *amqp.RuleChangeMessage) error {
	slog.InfoContext(ctx, "Processing rule change",
		log.FieldChange, msg.Change,
		log.FieldRuleID, msg.RuleID,
		"timestamp", msg.Timestamp)

	return w.Export(ctx)
}

// Export runs the projection pipeline and writes the daily balances to
// the configured sink.
func (w *ProjectionWorker) Export(ctx context.Context) error {
	rules, currentCents, err := w.projections.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}

	proj := projection.ProjectHorizon(rules, currentCents, core.Today(), w.horizonDays)
	days := proj.Balances.Days()

	if err := w.writer.WriteBalanceSheet(ctx, days); err != nil {
		return fmt.Errorf("write balance sheet: %w", err)
	}

	slog.InfoContext(ctx, "Projection exported",
		"rules", len(rules),
		"events", len(proj.Events),
		"days", len(days))
	return nil
}

// RunPeriodic exports the projection on a fixed interval until the
// context is cancelled. One export runs at startup so a fresh worker
// publishes a sheet without waiting for the first tick.
func (w *ProjectionWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if err := w.Export(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Export(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}
