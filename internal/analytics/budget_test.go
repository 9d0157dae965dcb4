package analytics

import (
	"testing"

	"fino/internal/core"
)

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		utilization float64
		want        BudgetStatus
	}{
		{0, StatusOnTrack},
		{50, StatusOnTrack},
		{50.1, StatusNeutral},
		{80, StatusNeutral},
		{80.1, StatusWarning},
		{100, StatusWarning},
		{100.1, StatusOver},
		{250, StatusOver},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.utilization); got != tt.want {
			t.Errorf("StatusFor(%v) = %q, want %q", tt.utilization, got, tt.want)
		}
	}
}

func TestSpentForMatchesAliasBucket(t *testing.T) {
	budget := core.Budget{Category: "Food", Amount: core.Money{Cents: 50000}}
	transactions := []core.Transaction{
		tx(core.Expense, "Food", 1000, core.NewDate(2026, 8, 1)),
		tx(core.Expense, "Food & Dining", 2000, core.NewDate(2026, 8, 2)),
		tx(core.Expense, "Bills", 9000, core.NewDate(2026, 8, 3)),
		tx(core.Income, "Food", 5000, core.NewDate(2026, 8, 4)), // income never counts
	}
	if got := SpentFor(budget, transactions); got.Cents != 3000 {
		t.Errorf("SpentFor = %d, want 3000", got.Cents)
	}
}

func TestUtilizationZeroGuard(t *testing.T) {
	if got := Utilization(core.Money{Cents: 5000}, core.Money{}); got != 0 {
		t.Errorf("zero-amount budget utilization = %v, want 0", got)
	}
	if got := Utilization(core.Money{Cents: 2500}, core.Money{Cents: 10000}); got != 25 {
		t.Errorf("utilization = %v, want 25", got)
	}
}

func TestComputeBudgetUsage(t *testing.T) {
	budgets := []core.Budget{
		{Category: "Food", Amount: core.Money{Cents: 10000}},
		{Category: "Transport", Amount: core.Money{Cents: 4000}},
	}
	transactions := []core.Transaction{
		tx(core.Expense, "Food", 12000, core.NewDate(2026, 8, 1)),
		tx(core.Expense, "Transportation", 1000, core.NewDate(2026, 8, 2)),
	}

	usage := ComputeBudgetUsage(budgets, transactions)
	if len(usage) != 2 {
		t.Fatalf("got %d usages, want 2", len(usage))
	}

	food := usage[0]
	if food.Spent.Cents != 12000 || food.Remaining != -2000 {
		t.Errorf("food spent/remaining = %d/%d, want 12000/-2000", food.Spent.Cents, food.Remaining)
	}
	if food.Status != StatusOver {
		t.Errorf("food status = %q, want %q", food.Status, StatusOver)
	}
	if got := Overshoot(food); got.Cents != 2000 {
		t.Errorf("food overshoot = %d, want 2000", got.Cents)
	}
	if got := OvershootPercent(food); got != 20 {
		t.Errorf("food overshoot percent = %v, want 20", got)
	}

	transport := usage[1]
	if transport.Utilization != 25 || transport.Status != StatusOnTrack {
		t.Errorf("transport = %v/%q, want 25/%q", transport.Utilization, transport.Status, StatusOnTrack)
	}
	if got := Overshoot(transport); !got.IsZero() {
		t.Errorf("within-budget overshoot = %d, want 0", got.Cents)
	}
}

func TestOvershootPercentZeroGuard(t *testing.T) {
	u := BudgetUsage{
		Budget: core.Budget{Category: "Misc"},
		Spent:  core.Money{Cents: 3000},
	}
	if got := OvershootPercent(u); got != 0 {
		t.Errorf("zero-amount budget overshoot percent = %v, want 0", got)
	}
}

func TestComputeOverallBudget(t *testing.T) {
	usage := []BudgetUsage{
		{Budget: core.Budget{Amount: core.Money{Cents: 10000}}, Spent: core.Money{Cents: 2500}},
		{Budget: core.Budget{Amount: core.Money{Cents: 10000}}, Spent: core.Money{Cents: 7500}},
	}
	o := ComputeOverallBudget(usage)
	if o.Budgeted.Cents != 20000 || o.Spent.Cents != 10000 {
		t.Errorf("overall = %d/%d, want 20000/10000", o.Budgeted.Cents, o.Spent.Cents)
	}
	if o.Utilization != 50 {
		t.Errorf("overall utilization = %v, want 50", o.Utilization)
	}

	empty := ComputeOverallBudget(nil)
	if empty.Utilization != 0 {
		t.Errorf("empty overall utilization = %v, want 0", empty.Utilization)
	}
}
