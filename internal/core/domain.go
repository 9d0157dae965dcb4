package core

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Classification is a purely descriptive label on a goal; it never changes
// behavior.
type Classification string

const (
	ShortTerm Classification = "short"
	MidTerm   Classification = "mid"
	LongTerm  Classification = "long"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyMethod      = errors.New("empty method")
	ErrInvalidTarget    = errors.New("target amount must be positive")
	ErrNonPositiveValue = errors.New("amount must be positive")
)

// Date is a calendar date without time-of-day semantics, kept at UTC
// midnight.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Valid reports whether the date carries a real calendar value. Records
// whose dates failed to parse carry a zero Date and are excluded by
// time-window filters instead of crashing them.
func (d Date) Valid() bool {
	return !d.IsZero()
}

const dateLayout = "2006-01-02"

// String formats the date as 2006-01-02, or empty for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "2006-01-02", or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendQuote(nil, d.String()), nil
}

// UnmarshalJSON accepts "2006-01-02" and RFC 3339 timestamps. Anything
// unparseable decodes as the zero date; the record survives, the date does
// not.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		d.Time = time.Time{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// ParseDate parses 2006-01-02 or RFC 3339, truncating to the calendar day.
// Unparseable input yields the zero date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t.UTC())
	}
	return Date{}
}

// Transaction is a single dated income or expense entry.
type Transaction struct {
	ID          int64           `json:"id,omitempty"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      Money           `json:"amount"`
	Date        Date            `json:"date"`
	BudgetID    int64           `json:"budget,omitempty"`
}

// When returns the transaction's calendar date for window filtering.
func (t Transaction) When() Date { return t.Date }

func (t Transaction) Validate() error {
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Date.Valid() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Budget is a per-category spending ceiling. Spend is never stored on the
// budget; it is recomputed from transactions at read time.
type Budget struct {
	ID       int64  `json:"id,omitempty"`
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// StrategyItem is a named monthly-contribution plan line within a goal.
// Order defines display and tie-break order.
type StrategyItem struct {
	ID                  int64  `json:"id,omitempty"`
	GoalID              int64  `json:"goal,omitempty"`
	Method              string `json:"method"`
	MonthlyContribution Money  `json:"monthly_contribution"`
	Order               int    `json:"order"`
}

func (s StrategyItem) Validate() error {
	if strings.TrimSpace(s.Method) == "" {
		return ErrEmptyMethod
	}
	if s.MonthlyContribution.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Contribution is a recorded deposit toward a goal. Posting one is the only
// operation that raises a goal's total_saved, and that happens server-side:
// the client re-fetches the goal afterwards to observe the new total.
type Contribution struct {
	ID     int64  `json:"id,omitempty"`
	GoalID int64  `json:"goal,omitempty"`
	Amount Money  `json:"amount"`
	Date   Date   `json:"date"`
	Note   string `json:"note,omitempty"`
}

// When returns the contribution's calendar date for window filtering.
func (c Contribution) When() Date { return c.Date }

func (c Contribution) Validate() error {
	if c.Amount.Cents <= 0 {
		return ErrNonPositiveValue
	}
	if !c.Date.Valid() {
		return ErrInvalidDate
	}
	return nil
}

// Goal is a savings target. TotalSaved is server-maintained and
// authoritative; the client never accumulates it locally.
type Goal struct {
	ID             int64          `json:"id,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	TargetAmount   Money          `json:"target_amount"`
	MonthlyTarget  Money          `json:"monthly_target,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	StartDate      Date           `json:"start_date,omitempty"`
	EndDate        Date           `json:"end_date,omitempty"`
	TotalSaved     Money          `json:"total_saved"`
	StrategyItems  []StrategyItem `json:"strategy_items,omitempty"`
	Contributions  []Contribution `json:"contributions,omitempty"`
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	for _, item := range g.StrategyItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TimelineMonths returns the whole-month span between start and end dates,
// or false when either is missing.
func (g Goal) TimelineMonths() (int, bool) {
	if !g.StartDate.Valid() || !g.EndDate.Valid() {
		return 0, false
	}
	months := (g.EndDate.Year()-g.StartDate.Year())*12 +
		int(g.EndDate.Month()) - int(g.StartDate.Month())
	return months, true
}
