package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"budget/internal/core"
	"budget/internal/csvimport"
	"budget/internal/projection"
)

// FormatCents renders an integer cent amount as a decimal string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// PrintRules renders the rule list as a table, one row per rule in
// store order.
func PrintRules(w io.Writer, rules []core.TransactionRule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "No transaction rules.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Title", "Frequency", "Kind", "Amount", "Next Due", "Category"})

	for _, r := range rules {
		kind := text.FgGreen.Sprint(r.Kind)
		if r.Kind == core.Expense {
			kind = text.FgRed.Sprint(r.Kind)
		}
		next := "-"
		if !r.NextDueDate.IsZero() {
			next = r.NextDueDate.Key()
		}
		t.AppendRow(table.Row{shortID(r.ID), r.Title, r.Frequency, kind, FormatCents(r.Amount.Cents), next, r.Category})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}

// PrintCalendar renders the daily balance sheet.
func PrintCalendar(w io.Writer, days []core.DayBalance) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No projected days.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Income", "Expenses", "Balance", "Events"})

	for _, d := range days {
		balance := FormatCents(d.Balance)
		if d.Balance < 0 {
			balance = text.FgRed.Sprint(balance)
		}
		t.AppendRow(table.Row{d.Date.Key(), FormatCents(d.DailyIncome), FormatCents(d.DailyExpenses), balance, eventTitles(d.Events)})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// PrintForward renders the forward view from a selected date: only days
// with events, with running start and end balances.
func PrintForward(w io.Writer, groups []projection.DayGroup, openingCents int64) {
	fmt.Fprintf(w, "Opening balance: %s\n", FormatCents(openingCents))
	if len(groups) == 0 {
		fmt.Fprintln(w, "No upcoming events.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Events", "Income", "Expenses", "Net", "Start", "End"})

	for _, g := range groups {
		net := FormatCents(g.DailyNet)
		if g.DailyNet < 0 {
			net = text.FgRed.Sprint(net)
		}
		t.AppendRow(table.Row{
			g.Date.Key(),
			eventTitles(g.Events),
			FormatCents(g.DailyIncome),
			FormatCents(g.DailyExpenses),
			net,
			FormatCents(g.StartingBalance),
			FormatCents(g.EndingBalance),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

// PrintSummary renders the weekly averages block.
func PrintSummary(w io.Writer, s projection.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendRow(table.Row{"Weekly income", fmt.Sprintf("%.2f", s.WeeklyIncome)})
	t.AppendRow(table.Row{"Weekly expenses", fmt.Sprintf("%.2f", s.WeeklyExpenses)})
	t.AppendRow(table.Row{"Weekly net", fmt.Sprintf("%.2f", s.WeeklyNet)})
	t.AppendRow(table.Row{"Monthly savings", fmt.Sprintf("%.2f", s.MonthlySavings)})
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// PrintImportResult reports parsed and skipped lines after a CSV import.
func PrintImportResult(w io.Writer, result *csvimport.Result) {
	fmt.Fprintln(w, result.Summary())
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  line %d skipped (%s): %s\n", s.Line, s.Reason, s.Content)
	}
}

func eventTitles(events []core.CashFlowEvent) string {
	if len(events) == 0 {
		return ""
	}
	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Description)
	}
	return strings.Join(titles, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
