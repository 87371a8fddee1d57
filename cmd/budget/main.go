package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/csvimport"
	"budget/internal/log"
	"budget/internal/projection"
	"budget/internal/services"
)

const usage = `Usage: budget <command> [flags]

Commands:
  import <file.csv>   Replace all rules with the contents of a CSV file
  add                 Add a single transaction rule
  list                List transaction rules
  calendar            Show the projected daily balance sheet
  forward             Show upcoming events from a selected date
  summary             Show weekly income/expense averages
  recalc              Recompute next due dates for all rules
  balance             Show or set bank and savings balances

Run 'budget <command> -h' for command flags.
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional for the CLI; mutations still work without a broker.
	var publisher services.RuleChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without change notifications", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	keywords := csvimport.DefaultKeywords()
	if cfg.KeywordsFile != "" {
		kw, err := csvimport.LoadKeywords(cfg.KeywordsFile)
		if err != nil {
			logger.Error("Failed to load keywords file", "error", err, "path", cfg.KeywordsFile)
			os.Exit(1)
		}
		keywords = kw
	}

	rules := services.NewRuleService(repo, publisher, csvimport.NewParser(keywords))
	projections := services.NewProjectionService(repo)

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:], cfg, rules, projections); err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg *config.Config, rules *services.RuleService, projections *services.ProjectionService) error {
	switch command {
	case "import":
		return runImport(ctx, args, rules)
	case "add":
		return runAdd(ctx, args, rules)
	case "list":
		return runList(ctx, rules)
	case "calendar":
		return runCalendar(ctx, args, cfg, projections)
	case "forward":
		return runForward(ctx, args, projections)
	case "summary":
		return runSummary(ctx, projections)
	case "recalc":
		return runRecalc(ctx, rules)
	case "balance":
		return runBalance(ctx, args, rules)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runImport(ctx context.Context, args []string, rules *services.RuleService) error {
	if len(args) != 1 {
		return fmt.Errorf("import expects exactly one CSV file argument")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	result, err := rules.ImportCSV(ctx, f, core.Today())
	if err != nil {
		return err
	}
	cli.PrintImportResult(os.Stdout, result)
	return nil
}

func runAdd(ctx context.Context, args []string, rules *services.RuleService) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "rule title")
	amount := fs.String("amount", "", "amount, e.g. 1200.50")
	freq := fs.String("freq", "", "frequency: weekly, fortnightly, monthly, annual, one-time")
	kind := fs.String("kind", "expense", "income or expense")
	category := fs.String("category", "", "optional category")
	start := fs.String("start", "", "start date YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", *amount, err)
	}
	frequency, ok := csvimport.NormalizeFrequency(*freq)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrInvalidFrequency, *freq)
	}

	startDate := core.Today()
	if *start != "" {
		startDate, err = core.ParseDateKey(*start)
		if err != nil {
			return fmt.Errorf("parse start date %q: %w", *start, err)
		}
	}

	rule := core.TransactionRule{
		ID:        uuid.NewString(),
		Title:     *title,
		Frequency: frequency,
		Amount:    core.Money{Cents: cents},
		Kind:      core.Kind(*kind),
		StartDate: startDate,
		Category:  *category,
	}
	rule.NextDueDate = projection.FirstDueDate(rule.Kind, rule.Frequency, startDate)

	if err := rules.CreateRule(ctx, rule); err != nil {
		return err
	}
	fmt.Printf("Added %s (%s) due %s\n", rule.Title, rule.ID, rule.NextDueDate.Key())
	return nil
}

func runList(ctx context.Context, rules *services.RuleService) error {
	list, err := rules.ListRules(ctx)
	if err != nil {
		return err
	}
	cli.PrintRules(os.Stdout, list)
	return nil
}

func runCalendar(ctx context.Context, args []string, cfg *config.Config, projections *services.ProjectionService) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	days := fs.Int("days", cfg.HorizonDays, "number of days to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	proj, _, err := projections.Project(ctx, core.Today())
	if err != nil {
		return err
	}
	all := proj.Balances.Days()
	if *days > 0 && *days < len(all) {
		all = all[:*days]
	}
	cli.PrintCalendar(os.Stdout, all)
	return nil
}

func runForward(ctx context.Context, args []string, projections *services.ProjectionService) error {
	fs := flag.NewFlagSet("forward", flag.ExitOnError)
	from := fs.String("from", "", "selected date YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	selected := core.Today()
	if *from != "" {
		var err error
		selected, err = core.ParseDateKey(*from)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", *from, err)
		}
	}

	groups, opening, err := projections.ForwardView(ctx, selected, core.Today())
	if err != nil {
		return err
	}
	cli.PrintForward(os.Stdout, groups, opening)
	return nil
}

func runSummary(ctx context.Context, projections *services.ProjectionService) error {
	summary, err := projections.Summary(ctx)
	if err != nil {
		return err
	}
	cli.PrintSummary(os.Stdout, summary)
	return nil
}

func runRecalc(ctx context.Context, rules *services.RuleService) error {
	updated, err := rules.RecalculateDueDates(ctx, core.Today())
	if err != nil {
		return err
	}
	fmt.Printf("Recalculated due dates for %d rules\n", updated)
	return nil
}

func runBalance(ctx context.Context, args []string, rules *services.RuleService) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	bank := fs.String("bank", "", "bank balance, e.g. 1500.00")
	savings := fs.String("savings", "", "savings balance, e.g. 8000.00")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *bank != "" || *savings != "" {
		bankCents, savingsCents, err := rules.GetBalances(ctx)
		if err != nil {
			return err
		}
		if *bank != "" {
			bankCents, err = core.ParseAmountCents(*bank)
			if err != nil {
				return fmt.Errorf("parse bank balance %q: %w", *bank, err)
			}
		}
		if *savings != "" {
			savingsCents, err = core.ParseAmountCents(*savings)
			if err != nil {
				return fmt.Errorf("parse savings balance %q: %w", *savings, err)
			}
		}
		if err := rules.SetBalances(ctx, bankCents, savingsCents); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Balances updated", "bank_cents", bankCents, "savings_cents", savingsCents)
	}

	bankCents, savingsCents, err := rules.GetBalances(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Bank:    %s\n", cli.FormatCents(bankCents))
	fmt.Printf("Savings: %s\n", cli.FormatCents(savingsCents))
	fmt.Printf("Total:   %s\n", cli.FormatCents(bankCents+savingsCents))
	return nil
}
