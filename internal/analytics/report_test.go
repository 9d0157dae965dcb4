package analytics

import (
	"testing"
	"time"

	"fino/internal/core"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	transactions := []core.Transaction{
		tx(core.Income, "Salary", 300000, core.NewDate(2026, 8, 1)),
		tx(core.Expense, "Food", 45000, core.NewDate(2026, 8, 10)),
		tx(core.Expense, "Food", 5000, core.NewDate(2025, 1, 1)), // outside the window
	}
	budgets := []core.Budget{
		{Category: "Food", Amount: core.Money{Cents: 60000}},
	}

	r := BuildReport(transactions, budgets, Window30, now)

	if len(r.Transactions) != 2 {
		t.Fatalf("report rows = %d, want 2 (window applied)", len(r.Transactions))
	}
	if r.Transactions[0].Amount != "3000.00" {
		t.Errorf("row amount = %q, want 3000.00", r.Transactions[0].Amount)
	}

	if len(r.Budgets) != 1 {
		t.Fatalf("budget rows = %d, want 1", len(r.Budgets))
	}
	b := r.Budgets[0]
	if b.Spent != "450.00" || b.Remaining != "150.00" {
		t.Errorf("budget row spent/remaining = %q/%q", b.Spent, b.Remaining)
	}
	if b.Usage != 75 || b.Status != StatusNeutral {
		t.Errorf("budget row usage = %v/%q", b.Usage, b.Status)
	}

	summary := make(map[string]string, len(r.Summary))
	for _, e := range r.Summary {
		summary[e.Label] = e.Value
	}
	if summary["Balance"] != "2550.00" {
		t.Errorf("summary balance = %q, want 2550.00", summary["Balance"])
	}
	if summary["Savings Rate"] != "85.0%" {
		t.Errorf("summary savings rate = %q, want 85.0%%", summary["Savings Rate"])
	}
	if summary["Top Category"] != "Food" {
		t.Errorf("summary top category = %q, want Food", summary["Top Category"])
	}
	if summary["Transactions"] != "2" {
		t.Errorf("summary transaction count = %q, want 2", summary["Transactions"])
	}
	if summary["Total Budgets"] != "1" {
		t.Errorf("summary budget count = %q, want 1", summary["Total Budgets"])
	}
	if summary["Total Budget Amount"] != "600.00" {
		t.Errorf("summary budgeted = %q, want 600.00", summary["Total Budget Amount"])
	}
	if summary["Total Spent"] != "450.00" {
		t.Errorf("summary spent = %q, want 450.00", summary["Total Spent"])
	}
}

func TestBuildReportEmpty(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	r := BuildReport(nil, nil, WindowAll, now)
	if len(r.Transactions) != 0 || len(r.Budgets) != 0 {
		t.Fatalf("empty input must yield empty tables")
	}
	for _, e := range r.Summary {
		if e.Label == "Savings Rate" && e.Value != "0.0%" {
			t.Errorf("empty savings rate = %q, want 0.0%%", e.Value)
		}
		if e.Label == "Top Category" {
			t.Error("empty report must not claim a top category")
		}
	}
}
