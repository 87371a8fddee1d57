package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/sheets"
	gsheet "budget/internal/sheets/google"
	"budget/internal/sheets/memory"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Export sink: Google Sheets when configured, in-memory otherwise so
	// the worker still exercises the full pipeline locally.
	var writer sheets.BalanceWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			return
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = memory.New()
		logger.Info("Google Sheets disabled, exporting to memory sink")
	}

	projWorker := worker.NewProjectionWorker(services.NewProjectionService(repo), writer, cfg.HorizonDays)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	// Consume change notifications when a broker is configured; the
	// periodic export below covers lost or absent messages.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			return
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeRuleChanges(gctx, func(msg *amqp.RuleChangeMessage) error {
				return projWorker.HandleRuleChange(gctx, msg)
			})
		})
	} else {
		logger.Info("AMQP disabled, running on export interval only")
	}

	g.Go(func() error {
		return projWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("budget-worker stopped")
}
