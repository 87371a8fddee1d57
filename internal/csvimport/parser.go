// Package csvimport ingests transaction rules from loosely structured
// budgeting CSVs: `title, frequency, amount[, ...]` rows with quoted
// fields, currency symbols, header rows and junk lines mixed in.
// Malformed rows are never fatal; they are skipped and reported.
package csvimport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/projection"
)

// ErrNoValidRows is returned when every line of the input was skipped.
var ErrNoValidRows = errors.New("no valid transaction rules found in CSV")

// SkippedLine records one diagnostic for a row that did not become a rule.
type SkippedLine struct {
	Line    int // 1-based line number in the input
	Reason  string
	Content string
}

// Result carries the parsed rules plus per-line skip diagnostics.
type Result struct {
	Rules   []core.TransactionRule
	Skipped []SkippedLine
}

// Summary renders the "N processed, M skipped" accounting line.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d processed, %d skipped", len(r.Rules), len(r.Skipped))
}

// Parser turns CSV lines into transaction rules using a keyword set for
// row filtering and kind inference.
type Parser struct {
	keywords Keywords
}

func NewParser(keywords Keywords) *Parser {
	return &Parser{keywords: keywords}
}

// Parse reads the whole input. Imported rules start today, carry a
// fresh ID and a next due date pre-computed by the due-date policy.
// Processing continues past bad rows; only a fully empty result is an
// error.
func (p *Parser) Parse(r io.Reader, today core.Date) (*Result, error) {
	result := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.parseLine(result, lineNo, line, today)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	if len(result.Rules) == 0 {
		return result, ErrNoValidRows
	}
	return result, nil
}

func (p *Parser) parseLine(result *Result, lineNo int, line string, today core.Date) {
	skip := func(reason string) {
		result.Skipped = append(result.Skipped, SkippedLine{Line: lineNo, Reason: reason, Content: line})
	}

	fields := SplitLine(line)
	if len(fields) < 3 {
		skip("insufficient data (less than 3 columns)")
		return
	}

	title := strings.TrimSpace(fields[0])
	frequency := strings.TrimSpace(fields[1])
	amountStr := strings.TrimSpace(fields[2])
	lowerTitle := strings.ToLower(title)

	if frequency == "" || frequency == "Frequency" || matchesAny(lowerTitle, p.keywords.SkipTitles) {
		skip("header/title row detected")
		return
	}

	cents, err := core.ParseAmountCents(amountStr)
	if err != nil {
		skip(fmt.Sprintf("invalid amount: %q", amountStr))
		return
	}
	if cents == 0 {
		skip(fmt.Sprintf("zero amount skipped: %q", amountStr))
		return
	}

	freq, ok := NormalizeFrequency(frequency)
	if !ok {
		skip(fmt.Sprintf("invalid frequency: %q", frequency))
		return
	}

	kind := p.inferKind(lowerTitle)

	rule := core.TransactionRule{
		ID:          uuid.NewString(),
		Title:       title,
		Frequency:   freq,
		Amount:      core.Money{Cents: cents}.Abs(),
		Kind:        kind,
		StartDate:   today,
		NextDueDate: projection.FirstDueDate(kind, freq, today),
	}
	result.Rules = append(result.Rules, rule)
}

// inferKind classifies a title: expense markers win over income
// markers, and anything unmatched is an expense.
func (p *Parser) inferKind(lowerTitle string) core.Kind {
	if matchesAny(lowerTitle, p.keywords.ExpenseMarkers) {
		return core.Expense
	}
	if matchesAny(lowerTitle, p.keywords.IncomeMarkers) {
		return core.Income
	}
	return core.Expense
}

// NormalizeFrequency maps free-form frequency text onto the known
// frequencies by case-insensitive substring match.
func NormalizeFrequency(s string) (core.Frequency, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "fortnight"), strings.Contains(lower, "bi-week"):
		return core.Fortnightly, true
	case strings.Contains(lower, "week"):
		return core.Weekly, true
	case strings.Contains(lower, "month"):
		return core.Monthly, true
	case strings.Contains(lower, "annual"), strings.Contains(lower, "year"):
		return core.Annual, true
	case strings.Contains(lower, "one"), strings.Contains(lower, "once"):
		return core.OneTime, true
	}
	return "", false
}

// SplitLine splits one CSV line on commas, honoring double-quoted
// fields with doubled-quote escapes. Fields come back trimmed.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++ // skip the escaped quote
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}
