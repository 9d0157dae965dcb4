package analytics

import (
	"strconv"
	"time"

	"fino/internal/core"
)

// Report is a flattened, presentation-ready snapshot of a window: summary
// figures, per-transaction rows and per-budget rows. Export adapters write
// it out without recomputing anything.
type Report struct {
	GeneratedAt  time.Time
	Window       Window
	Summary      []SummaryEntry
	Transactions []TransactionRow
	Budgets      []BudgetRow
}

// SummaryEntry is a labeled figure in the report header block.
type SummaryEntry struct {
	Label string
	Value string
}

// TransactionRow is one transaction flattened to strings for tabular
// output.
type TransactionRow struct {
	Date        string
	Type        string
	Category    string
	Description string
	Amount      string
}

// BudgetRow is one budget with its recomputed usage flattened for tabular
// output.
type BudgetRow struct {
	Category  string
	Budgeted  string
	Spent     string
	Remaining string
	Usage     float64
	Status    BudgetStatus
}

// BuildReport assembles a report for the given window. Transactions are
// filtered first; budgets are always evaluated against the filtered set so
// the usage column matches the transaction table beneath it.
func BuildReport(transactions []core.Transaction, budgets []core.Budget, w Window, now time.Time) Report {
	windowed := FilterByWindow(transactions, w, now)
	totals := ComputeTotals(windowed)
	usage := ComputeBudgetUsage(budgets, windowed)
	overall := ComputeOverallBudget(usage)

	r := Report{
		GeneratedAt: now,
		Window:      w,
		Summary: []SummaryEntry{
			{Label: "Generated", Value: now.UTC().Format(time.RFC3339)},
			{Label: "Window", Value: string(w)},
			{Label: "Transactions", Value: strconv.Itoa(totals.TransactionCount)},
			{Label: "Total Income", Value: totals.Income.String()},
			{Label: "Total Expenses", Value: totals.Expense.String()},
			{Label: "Total Budgets", Value: strconv.Itoa(len(usage))},
			{Label: "Total Budget Amount", Value: overall.Budgeted.String()},
			{Label: "Total Spent", Value: overall.Spent.String()},
			{Label: "Balance", Value: core.Money{Cents: totals.Balance}.String()},
			{Label: "Savings Rate", Value: percent(totals.SavingsRate)},
			{Label: "Budget Utilization", Value: percent(overall.Utilization)},
		},
	}
	if top, ok := TopCategory(windowed); ok {
		r.Summary = append(r.Summary, SummaryEntry{Label: "Top Category", Value: top.Category})
	}

	r.Transactions = make([]TransactionRow, 0, len(windowed))
	for _, tx := range windowed {
		r.Transactions = append(r.Transactions, TransactionRow{
			Date:        tx.Date.String(),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
		})
	}

	r.Budgets = make([]BudgetRow, 0, len(usage))
	for _, u := range usage {
		r.Budgets = append(r.Budgets, BudgetRow{
			Category:  u.Budget.Category,
			Budgeted:  u.Budget.Amount.String(),
			Spent:     u.Spent.String(),
			Remaining: core.Money{Cents: u.Remaining}.String(),
			Usage:     Round1(u.Utilization),
			Status:    u.Status,
		})
	}
	return r
}

func percent(v float64) string {
	return strconv.FormatFloat(Round1(v), 'f', 1, 64) + "%"
}
