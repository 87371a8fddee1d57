package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Annual      Frequency = "annual"
	OneTime     Frequency = "one-time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Frequency describes how often a recurring transaction repeats.
	Frequency string

	// Kind splits cash flows into income and expense.
	Kind string

	// Date is a calendar date pinned to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// TransactionRule is a user-defined recurring cash-flow definition.
	// The amount is always a positive magnitude; the sign is carried by Kind.
	TransactionRule struct {
		ID          string
		Title       string
		Frequency   Frequency
		Amount      Money
		Kind        Kind
		StartDate   Date
		NextDueDate Date // zero when not pre-computed
		Category    string
	}

	// CashFlowEvent is one concrete occurrence of a rule on a specific date.
	// Events are ephemeral: regenerated from rules on every projection run.
	CashFlowEvent struct {
		Date         Date
		Amount       Money
		Kind         Kind
		Description  string
		SourceRuleID string
	}

	// DayBalance is the aggregated state for one calendar day. Events keep
	// expansion order, which is not necessarily chronological within the day.
	DayBalance struct {
		Date          Date
		Balance       int64 // signed running total in cents, end of day
		DailyIncome   int64 // cents, >= 0
		DailyExpenses int64 // cents, >= 0
		Events        []CashFlowEvent
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrEmptyTitle       = errors.New("empty title")
)

// DateKeyLayout is the canonical day-bucket key format.
const DateKeyLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its UTC calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), int(t.UTC().Month()), t.UTC().Day())
}

// Today returns the current UTC calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// Key returns the canonical YYYY-MM-DD key for day bucketing.
func (d Date) Key() string {
	return d.Format(DateKeyLayout)
}

// ParseDateKey parses a canonical YYYY-MM-DD key back into a Date.
func ParseDateKey(s string) (Date, error) {
	t, err := time.ParseInLocation(DateKeyLayout, s, time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) AddWeeks(n int) Date {
	return d.AddDays(7 * n)
}

// AddMonths advances by whole calendar months, clamping the day of month
// to the length of the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

func (d Date) AddYears(n int) Date {
	return Date{Time: d.Time.AddDate(n, 0, 0)}
}

// StartOfNextMonth returns the first day of the month following d.
func (d Date) StartOfNextMonth() Date {
	year, month, _ := d.Date()
	return NewDate(year, int(month)+1, 1)
}

// NextFriday returns the next Friday strictly after d; a Friday maps to
// the Friday one week later, never to itself.
func (d Date) NextFriday() Date {
	days := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDays(days)
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Fortnightly, Monthly, Annual, OneTime:
		return true
	}
	return false
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// FirstOccurrence returns where expansion starts for this rule: the
// pre-computed next due date when present, the start date otherwise.
// A zero NextDueDate means the caller derives the first occurrence from
// StartDate via the due-date policy.
func (r TransactionRule) FirstOccurrence() (Date, bool) {
	if !r.NextDueDate.IsZero() {
		return r.NextDueDate, true
	}
	return r.StartDate, false
}

func (r TransactionRule) Validate() error {
	if len(strings.TrimSpace(r.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(r.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if err := r.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	return nil
}
