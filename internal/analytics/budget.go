package analytics

import "fino/internal/core"

// BudgetStatus classifies budget utilization for display.
type BudgetStatus string

const (
	StatusOnTrack BudgetStatus = "on-track" // at or under 50%
	StatusNeutral BudgetStatus = ""         // over 50%, at or under 80%
	StatusWarning BudgetStatus = "warning"  // over 80%, at or under 100%
	StatusOver    BudgetStatus = "over"     // over 100%
)

// StatusFor maps a utilization percentage to its display status.
func StatusFor(utilization float64) BudgetStatus {
	switch {
	case utilization <= 50:
		return StatusOnTrack
	case utilization <= 80:
		return StatusNeutral
	case utilization <= 100:
		return StatusWarning
	default:
		return StatusOver
	}
}

// BudgetUsage is a budget joined with the spend recomputed from the
// transaction set it was evaluated against.
type BudgetUsage struct {
	Budget      core.Budget
	Spent       core.Money
	Remaining   int64 // cents; negative when overspent
	Utilization float64
	Status      BudgetStatus
}

// SpentFor sums the expense transactions whose category falls in the same
// alias bucket as the budget's category. Income never counts against a
// budget.
func SpentFor(b core.Budget, transactions []core.Transaction) core.Money {
	var spent core.Money
	for _, tx := range transactions {
		if tx.Type != core.Expense {
			continue
		}
		if core.SameCategoryBucket(b.Category, tx.Category) {
			spent = spent.Add(tx.Amount)
		}
	}
	return spent
}

// Utilization returns spent/amount as a percentage. A zero-amount budget
// reports 0, never NaN or Inf.
func Utilization(spent, amount core.Money) float64 {
	if amount.Cents <= 0 {
		return 0
	}
	return float64(spent.Cents) / float64(amount.Cents) * 100
}

// ComputeBudgetUsage evaluates every budget against the transaction set,
// preserving budget order.
func ComputeBudgetUsage(budgets []core.Budget, transactions []core.Transaction) []BudgetUsage {
	usage := make([]BudgetUsage, 0, len(budgets))
	for _, b := range budgets {
		spent := SpentFor(b, transactions)
		util := Utilization(spent, b.Amount)
		usage = append(usage, BudgetUsage{
			Budget:      b,
			Spent:       spent,
			Remaining:   b.Amount.Cents - spent.Cents,
			Utilization: util,
			Status:      StatusFor(util),
		})
	}
	return usage
}

// OverallBudget aggregates every budget into a single figure.
type OverallBudget struct {
	Budgeted    core.Money
	Spent       core.Money
	Utilization float64
}

// ComputeOverallBudget sums budgeted and spent amounts across all budgets.
// The utilization zero-guard applies to the summed amount too.
func ComputeOverallBudget(usage []BudgetUsage) OverallBudget {
	var o OverallBudget
	for _, u := range usage {
		o.Budgeted = o.Budgeted.Add(u.Budget.Amount)
		o.Spent = o.Spent.Add(u.Spent)
	}
	o.Utilization = Utilization(o.Spent, o.Budgeted)
	return o
}

// Overshoot is how far spend exceeds the ceiling, zero while within it.
func Overshoot(u BudgetUsage) core.Money {
	over := u.Spent.Cents - u.Budget.Amount.Cents
	if over < 0 {
		over = 0
	}
	return core.Money{Cents: over}
}

// OvershootPercent is the overshoot relative to the ceiling. Zero-amount
// budgets report 0 even when money was spent against them.
func OvershootPercent(u BudgetUsage) float64 {
	if u.Budget.Amount.Cents <= 0 {
		return 0
	}
	return float64(Overshoot(u).Cents) / float64(u.Budget.Amount.Cents) * 100
}
