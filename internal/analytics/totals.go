package analytics

import (
	"math"

	"fino/internal/core"
)

// Totals are the headline figures for a transaction set.
type Totals struct {
	Income  core.Money
	Expense core.Money
	Balance int64 // cents; negative when expenses exceed income

	// SavingsRate is balance/income as a percentage, exact. It is 0 when
	// income is 0, never NaN or Inf. Round only at the presentation
	// boundary (Round1).
	SavingsRate float64

	TransactionCount int
}

// ComputeTotals sums a transaction set into income, expense, balance and
// savings rate. Unknown transaction types contribute nothing.
func ComputeTotals(transactions []core.Transaction) Totals {
	t := Totals{TransactionCount: len(transactions)}
	for _, tx := range transactions {
		switch tx.Type {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Cents - t.Expense.Cents
	if t.Income.Cents > 0 {
		t.SavingsRate = float64(t.Balance) / float64(t.Income.Cents) * 100
	}
	return t
}

// CategoryAmount pairs a category label with a summed amount.
type CategoryAmount struct {
	Category string
	Amount   core.Money
}

// CategoryBreakdown sums expense amounts per category label. Income
// transactions are excluded. Map iteration order is unspecified; consumers
// needing a deterministic ranking use TopCategories.
func CategoryBreakdown(transactions []core.Transaction) map[string]core.Money {
	totals := make(map[string]core.Money)
	for _, tx := range transactions {
		if tx.Type != core.Expense {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	return totals
}

// TopCategories ranks expense categories by amount descending, ties broken
// by first occurrence in the input so the ranking is deterministic. A
// non-positive limit returns the full ranking.
func TopCategories(transactions []core.Transaction, limit int) []CategoryAmount {
	totals := make(map[string]int64)
	order := make(map[string]int)
	var labels []string
	for _, tx := range transactions {
		if tx.Type != core.Expense {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order[tx.Category] = len(labels)
			labels = append(labels, tx.Category)
		}
		totals[tx.Category] += tx.Amount.Cents
	}

	ranked := make([]CategoryAmount, len(labels))
	for i, label := range labels {
		ranked[i] = CategoryAmount{Category: label, Amount: core.Money{Cents: totals[label]}}
	}
	// Insertion sort keeps the first-occurrence tie-break stable.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0; j-- {
			a, b := ranked[j-1], ranked[j]
			if b.Amount.Cents > a.Amount.Cents ||
				(b.Amount.Cents == a.Amount.Cents && order[b.Category] < order[a.Category]) {
				ranked[j-1], ranked[j] = b, a
				continue
			}
			break
		}
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopCategory returns the biggest expense category, or false when there is
// no expense at all.
func TopCategory(transactions []core.Transaction) (CategoryAmount, bool) {
	ranked := TopCategories(transactions, 1)
	if len(ranked) == 0 {
		return CategoryAmount{}, false
	}
	return ranked[0], true
}

// Round1 rounds a percentage to one decimal place for display. Internal
// computation stays exact.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
