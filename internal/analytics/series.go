package analytics

import (
	"fmt"
	"strconv"
	"time"

	"fino/internal/core"
)

// Period selects the bucketing of a time series.
type Period string

const (
	PeriodWeekly  Period = "weekly"  // last 7 calendar days
	PeriodMonthly Period = "monthly" // last 6 calendar months
	PeriodYearly  Period = "yearly"  // last 6 calendar years
)

// ParsePeriod validates a period label coming from a query parameter.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown series period %q", s)
}

// Buckets returns the fixed series length for the period.
func (p Period) Buckets() int {
	if p == PeriodWeekly {
		return 7
	}
	return 6
}

// Series is a fixed-length, oldest-first income/expense time series.
// Buckets with no transactions hold zero; the length never depends on the
// data.
type Series struct {
	Labels  []string
	Income  []core.Money
	Expense []core.Money
}

// ComputeSeries buckets transactions into the trailing calendar days,
// months or years ending at now. Now is captured once by the caller so
// every bucket boundary is computed against the same reference instant.
func ComputeSeries(transactions []core.Transaction, p Period, now time.Time) Series {
	n := p.Buckets()
	s := Series{
		Labels:  make([]string, 0, n),
		Income:  make([]core.Money, n),
		Expense: make([]core.Money, n),
	}

	switch p {
	case PeriodWeekly:
		today := core.DateOf(now)
		for i := n - 1; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			s.Labels = append(s.Labels, day.Format("Mon"))
			idx := n - 1 - i
			for _, tx := range transactions {
				if !tx.Date.Valid() || !tx.Date.Equal(day) {
					continue
				}
				s.add(idx, tx)
			}
		}
	case PeriodMonthly:
		// Anchor on the first of the month so subtracting months never
		// skips short months.
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		for i := n - 1; i >= 0; i-- {
			m := first.AddDate(0, -i, 0)
			s.Labels = append(s.Labels, m.Format("Jan"))
			idx := n - 1 - i
			for _, tx := range transactions {
				if !tx.Date.Valid() {
					continue
				}
				if tx.Date.Year() == m.Year() && tx.Date.Month() == m.Month() {
					s.add(idx, tx)
				}
			}
		}
	case PeriodYearly:
		currentYear := now.Year()
		for i := n - 1; i >= 0; i-- {
			year := currentYear - i
			s.Labels = append(s.Labels, strconv.Itoa(year))
			idx := n - 1 - i
			for _, tx := range transactions {
				if !tx.Date.Valid() {
					continue
				}
				if tx.Date.Year() == year {
					s.add(idx, tx)
				}
			}
		}
	}

	return s
}

func (s *Series) add(idx int, tx core.Transaction) {
	switch tx.Type {
	case core.Income:
		s.Income[idx] = s.Income[idx].Add(tx.Amount)
	case core.Expense:
		s.Expense[idx] = s.Expense[idx].Add(tx.Amount)
	}
}
