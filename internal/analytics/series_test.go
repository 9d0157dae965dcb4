package analytics

import (
	"testing"
	"time"

	"fino/internal/core"
)

func TestComputeSeriesWeekly(t *testing.T) {
	// 2026-08-28 is a Friday.
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	transactions := []core.Transaction{
		tx(core.Income, "Salary", 100000, core.NewDate(2026, 8, 28)),
		tx(core.Expense, "Food", 2500, core.NewDate(2026, 8, 28)),
		tx(core.Expense, "Food", 1500, core.NewDate(2026, 8, 22)), // oldest bucket
		tx(core.Expense, "Food", 9999, core.NewDate(2026, 8, 21)), // outside the series
	}

	s := ComputeSeries(transactions, PeriodWeekly, now)
	if len(s.Labels) != 7 || len(s.Income) != 7 || len(s.Expense) != 7 {
		t.Fatalf("weekly series must have 7 buckets, got %d/%d/%d", len(s.Labels), len(s.Income), len(s.Expense))
	}
	if s.Labels[0] != "Sat" || s.Labels[6] != "Fri" {
		t.Errorf("labels oldest first: got %v", s.Labels)
	}
	if s.Expense[0].Cents != 1500 {
		t.Errorf("oldest bucket = %d, want 1500", s.Expense[0].Cents)
	}
	if s.Income[6].Cents != 100000 || s.Expense[6].Cents != 2500 {
		t.Errorf("newest bucket = %d/%d, want 100000/2500", s.Income[6].Cents, s.Expense[6].Cents)
	}
	for i := 1; i < 6; i++ {
		if !s.Income[i].IsZero() || !s.Expense[i].IsZero() {
			t.Errorf("bucket %d should be zero-filled", i)
		}
	}
}

func TestComputeSeriesMonthly(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	transactions := []core.Transaction{
		tx(core.Expense, "Bills", 7000, core.NewDate(2026, 3, 15)), // oldest bucket (March)
		tx(core.Expense, "Bills", 8000, core.NewDate(2026, 8, 1)),
		tx(core.Expense, "Bills", 5000, core.NewDate(2026, 2, 28)), // outside
	}

	s := ComputeSeries(transactions, PeriodMonthly, now)
	if len(s.Labels) != 6 {
		t.Fatalf("monthly series must have 6 buckets, got %d", len(s.Labels))
	}
	want := []string{"Mar", "Apr", "May", "Jun", "Jul", "Aug"}
	for i, label := range want {
		if s.Labels[i] != label {
			t.Fatalf("labels = %v, want %v", s.Labels, want)
		}
	}
	if s.Expense[0].Cents != 7000 {
		t.Errorf("March bucket = %d, want 7000", s.Expense[0].Cents)
	}
	if s.Expense[5].Cents != 8000 {
		t.Errorf("August bucket = %d, want 8000", s.Expense[5].Cents)
	}
}

func TestComputeSeriesMonthlyShortMonthAnchor(t *testing.T) {
	// From March 31, naive month subtraction would land in early March
	// twice; anchoring on the first of the month keeps February distinct.
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	s := ComputeSeries(nil, PeriodMonthly, now)
	want := []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
	for i, label := range want {
		if s.Labels[i] != label {
			t.Fatalf("labels = %v, want %v", s.Labels, want)
		}
	}
}

func TestComputeSeriesYearly(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	transactions := []core.Transaction{
		tx(core.Income, "Salary", 120000, core.NewDate(2021, 6, 1)),
		tx(core.Income, "Salary", 130000, core.NewDate(2026, 1, 1)),
		tx(core.Income, "Salary", 999, core.NewDate(2020, 12, 31)), // outside
	}

	s := ComputeSeries(transactions, PeriodYearly, now)
	if len(s.Labels) != 6 {
		t.Fatalf("yearly series must have 6 buckets, got %d", len(s.Labels))
	}
	if s.Labels[0] != "2021" || s.Labels[5] != "2026" {
		t.Errorf("labels = %v", s.Labels)
	}
	if s.Income[0].Cents != 120000 || s.Income[5].Cents != 130000 {
		t.Errorf("buckets = %d/%d, want 120000/130000", s.Income[0].Cents, s.Income[5].Cents)
	}
}

func TestComputeSeriesEmptyInput(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	for _, p := range []Period{PeriodWeekly, PeriodMonthly, PeriodYearly} {
		s := ComputeSeries(nil, p, now)
		if len(s.Labels) != p.Buckets() {
			t.Errorf("%s: empty input must still yield %d buckets", p, p.Buckets())
		}
		for i := range s.Income {
			if !s.Income[i].IsZero() || !s.Expense[i].IsZero() {
				t.Errorf("%s: bucket %d not zero", p, i)
			}
		}
	}
}

func TestComputeSeriesSkipsInvalidDates(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	transactions := []core.Transaction{
		tx(core.Expense, "Food", 100, core.Date{}),
	}
	s := ComputeSeries(transactions, PeriodYearly, now)
	for i := range s.Expense {
		if !s.Expense[i].IsZero() {
			t.Fatalf("invalid-date record leaked into bucket %d", i)
		}
	}
}
