package google

import (
	"context"
	"testing"
	"time"

	"fino/internal/analytics"
	"fino/internal/core"
)

func TestReportRows(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	r := analytics.BuildReport(
		[]core.Transaction{
			{Type: core.Income, Category: "Salary", Amount: core.Money{Cents: 100000}, Date: core.NewDate(2026, 8, 1)},
			{Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 2500}, Date: core.NewDate(2026, 8, 2)},
		},
		[]core.Budget{{Category: "Food", Amount: core.Money{Cents: 10000}}},
		analytics.Window30, now)

	rows := reportRows(r)

	// Summary block, spacer, budget header + rows, spacer, transaction
	// header + rows.
	want := len(r.Summary) + 1 + 1 + len(r.Budgets) + 1 + 1 + len(r.Transactions)
	if len(rows) != want {
		t.Fatalf("rows = %d, want %d", len(rows), want)
	}

	budgetHeader := rows[len(r.Summary)+1]
	if budgetHeader[0] != "Budget" {
		t.Errorf("budget header misplaced: %v", budgetHeader)
	}
	lastRow := rows[len(rows)-1]
	if lastRow[2] != "Food" || lastRow[4] != "25.00" {
		t.Errorf("transaction row = %v", lastRow)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("New() without a spreadsheet ID should fail")
	}
}
