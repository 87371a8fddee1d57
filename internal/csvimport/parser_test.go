package csvimport

import (
	"errors"
	"strings"
	"testing"

	"budget/internal/core"
)

var testToday = core.NewDate(2024, 1, 15) // a Monday

func parseString(t *testing.T, input string) *Result {
	t.Helper()
	result, err := NewParser(DefaultKeywords()).Parse(strings.NewReader(input), testToday)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return result
}

func TestParseSkipAccounting(t *testing.T) {
	input := strings.Join([]string{
		"Item, Frequency, Amount",
		"Salary, Monthly, 2500",
		"Rent, Monthly, 0",
		"Groceries, Weekly, 85.50",
		"Car insurance, Annual, £320",
	}, "\n")

	result := parseString(t, input)
	if len(result.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(result.Rules))
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skipped lines, got %d: %+v", len(result.Skipped), result.Skipped)
	}
	if got := result.Summary(); got != "3 processed, 2 skipped" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestParseSkipReasons(t *testing.T) {
	cases := []struct {
		name   string
		line   string
		reason string
	}{
		{"too few columns", "Salary, Monthly", "insufficient data"},
		{"header frequency field", "Something, Frequency, 100", "header/title row"},
		{"empty frequency", "Something, , 100", "header/title row"},
		{"household junk title", "Household costs, Monthly, 100", "header/title row"},
		{"expenditure junk title", "Total expenditure, Monthly, 100", "header/title row"},
		{"introduction junk title", "Introduction, Monthly, 100", "header/title row"},
		{"non-numeric amount", "Salary, Monthly, lots", "invalid amount"},
		{"zero amount", "Salary, Monthly, 0.00", "zero amount"},
		{"unknown frequency", "Salary, Sometimes, 100", "invalid frequency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.line + "\nGroceries, Weekly, 10"
			result := parseString(t, input)
			if len(result.Skipped) != 1 {
				t.Fatalf("expected 1 skipped line, got %+v", result.Skipped)
			}
			skip := result.Skipped[0]
			if skip.Line != 1 {
				t.Fatalf("expected line 1, got %d", skip.Line)
			}
			if !strings.Contains(skip.Reason, tc.reason) {
				t.Fatalf("reason %q does not mention %q", skip.Reason, tc.reason)
			}
		})
	}
}

func TestParseAllRowsSkippedIsAnError(t *testing.T) {
	_, err := NewParser(DefaultKeywords()).Parse(strings.NewReader("Item, Frequency, Amount\n"), testToday)
	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
}

func TestParseQuotedFields(t *testing.T) {
	result := parseString(t, `"Salary, main job", Monthly, "2,500.00"`)
	if len(result.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %+v", result.Skipped)
	}
	r := result.Rules[0]
	if r.Title != "Salary, main job" {
		t.Fatalf("embedded comma lost: %q", r.Title)
	}
	if r.Amount.Cents != 250000 {
		t.Fatalf("expected 250000 cents, got %d", r.Amount.Cents)
	}
}

func TestSplitLineEscapedQuotes(t *testing.T) {
	fields := SplitLine(`"He said ""rent""", Monthly, 100`)
	if len(fields) != 3 || fields[0] != `He said "rent"` {
		t.Fatalf("unexpected fields %q", fields)
	}
}

func TestParseKindInference(t *testing.T) {
	cases := []struct {
		title string
		want  core.Kind
	}{
		{"Main salary", core.Income},
		{"Child benefit", core.Income},
		{"State pension", core.Income},
		{"Pension contribution", core.Expense}, // expense marker beats "pension"
		{"Mortgage payment protection", core.Expense},
		{"Home insurance", core.Expense},
		{"School fees", core.Expense},
		{"Mystery line item", core.Expense}, // default
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			result := parseString(t, tc.title+", Monthly, 100")
			if got := result.Rules[0].Kind; got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseNegativeAmountStoredAbsolute(t *testing.T) {
	result := parseString(t, "Groceries, Weekly, -85.20")
	if got := result.Rules[0].Amount.Cents; got != 8520 {
		t.Fatalf("expected 8520, got %d", got)
	}
}

func TestNormalizeFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want core.Frequency
		ok   bool
	}{
		{"Weekly", core.Weekly, true},
		{"per week", core.Weekly, true},
		{"Fortnightly", core.Fortnightly, true},
		{"bi-weekly", core.Fortnightly, true},
		{"MONTHLY", core.Monthly, true},
		{"Annually", core.Annual, true},
		{"per year", core.Annual, true},
		{"One-time", core.OneTime, true},
		{"once off", core.OneTime, true},
		{"daily", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeFrequency(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: got (%s, %v), want (%s, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParsePopulatesRuleDefaults(t *testing.T) {
	result := parseString(t, "Wages, Weekly, 500")
	r := result.Rules[0]
	if r.ID == "" {
		t.Fatalf("expected generated rule ID")
	}
	if !r.StartDate.SameDay(testToday) {
		t.Fatalf("expected start date %s, got %s", testToday.Key(), r.StartDate.Key())
	}
	// Weekly income pays on the Friday after the import date.
	if !r.NextDueDate.SameDay(core.NewDate(2024, 1, 19)) {
		t.Fatalf("expected next due 2024-01-19, got %s", r.NextDueDate.Key())
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("imported rule failed validation: %v", err)
	}
}
