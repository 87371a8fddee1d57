package csvimport

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keywords drives the row-filtering and income/expense inference
// heuristics. Expense markers take precedence over income markers;
// titles matching neither set default to expense. The precedence is a
// heuristic inherited from the budgeting data this importer was built
// for, and titles outside both sets can be misclassified.
type Keywords struct {
	// SkipTitles marks header/junk rows that are skipped outright.
	SkipTitles []string `yaml:"skip_titles"`
	// ExpenseMarkers force the expense kind even when an income marker
	// also matches ("pension contribution" vs "pension").
	ExpenseMarkers []string `yaml:"expense_markers"`
	// IncomeMarkers select the income kind when no expense marker matches.
	IncomeMarkers []string `yaml:"income_markers"`
}

// DefaultKeywords returns the built-in marker sets.
func DefaultKeywords() Keywords {
	return Keywords{
		SkipTitles: []string{
			"household",
			"expenditure",
			"introduction",
		},
		ExpenseMarkers: []string{
			"pocket money",
			"childrens",
			"children",
			"mortgage payment protection",
			"pension contribution",
			"repair and maintenance",
			"maintenance",
			"gifts",
			"voluntary contribution",
			"membership",
			"school fees",
			"college fees",
			"school uniform",
			"school books",
			"college books",
			"nct",
			"insurance",
		},
		IncomeMarkers: []string{
			"income",
			"earnings",
			"salary",
			"wage",
			"benefit",
			"payment",
			"pension",
			"allowance",
			"grant",
			"boarders",
			"lodgers",
			"welfare",
		},
	}
}

// LoadKeywords reads a YAML keywords file and merges it over the
// defaults: file entries extend the built-in sets rather than replacing
// them. An empty path returns the defaults unchanged.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read keywords file: %w", err)
	}

	var extra Keywords
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return kw, fmt.Errorf("parse keywords file: %w", err)
	}

	kw.SkipTitles = mergeMarkers(kw.SkipTitles, extra.SkipTitles)
	kw.ExpenseMarkers = mergeMarkers(kw.ExpenseMarkers, extra.ExpenseMarkers)
	kw.IncomeMarkers = mergeMarkers(kw.IncomeMarkers, extra.IncomeMarkers)
	return kw, nil
}

func mergeMarkers(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, m := range base {
		seen[m] = struct{}{}
	}
	for _, m := range extra {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		base = append(base, m)
	}
	return base
}

// matchesAny reports whether the lower-cased title contains any marker.
func matchesAny(lowerTitle string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lowerTitle, m) {
			return true
		}
	}
	return false
}
