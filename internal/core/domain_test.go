package core

import (
	"encoding/json"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Type:     Expense,
		Category: "Food",
		Amount:   Money{Cents: 1500},
		Date:     NewDate(2026, 8, 10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{name: "bad type", mutate: func(tr *Transaction) { tr.Type = "transfer" }, want: ErrInvalidType},
		{name: "zero date", mutate: func(tr *Transaction) { tr.Date = Date{} }, want: ErrInvalidDate},
		{name: "empty category", mutate: func(tr *Transaction) { tr.Category = "  " }, want: ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			if err := tr.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{Title: "Emergency Fund", TargetAmount: Money{Cents: 100000}}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	g.TargetAmount = Money{}
	if err := g.Validate(); err != ErrInvalidTarget {
		t.Errorf("zero target: Validate() = %v, want %v", err, ErrInvalidTarget)
	}
}

func TestGoalTimelineMonths(t *testing.T) {
	g := Goal{
		StartDate: NewDate(2026, 1, 15),
		EndDate:   NewDate(2026, 7, 1),
	}
	months, ok := g.TimelineMonths()
	if !ok || months != 6 {
		t.Errorf("TimelineMonths() = %d, %v, want 6, true", months, ok)
	}

	g.EndDate = Date{}
	if _, ok := g.TimelineMonths(); ok {
		t.Error("TimelineMonths() should report false without an end date")
	}
}

func TestDateUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		want  string
	}{
		{name: "calendar date", input: `"2026-08-28"`, valid: true, want: "2026-08-28"},
		{name: "rfc3339 truncated", input: `"2026-08-28T15:04:05Z"`, valid: true, want: "2026-08-28"},
		{name: "null", input: `null`, valid: false},
		{name: "garbage excluded not fatal", input: `"not-a-date"`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.input), &d); err != nil {
				t.Fatalf("Unmarshal(%s) unexpected error: %v", tt.input, err)
			}
			if d.Valid() != tt.valid {
				t.Fatalf("Valid() = %v, want %v", d.Valid(), tt.valid)
			}
			if tt.valid && d.String() != tt.want {
				t.Errorf("String() = %s, want %s", d.String(), tt.want)
			}
		})
	}
}

func TestMatchingCategories(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{name: "food alias group", category: "Food", want: []string{"Food", "Food & Dining"}},
		{name: "dining maps back", category: "Food & Dining", want: []string{"Food", "Food & Dining"}},
		{name: "transport group", category: "Transportation", want: []string{"Transport", "Transportation"}},
		{name: "unknown stands alone", category: "Pet Care", want: []string{"Pet Care"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchingCategories(tt.category)
			if len(got) != len(tt.want) {
				t.Fatalf("MatchingCategories(%q) = %v, want %v", tt.category, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MatchingCategories(%q)[%d] = %q, want %q", tt.category, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSameCategoryBucket(t *testing.T) {
	if !SameCategoryBucket("Food", "Food & Dining") {
		t.Error("Food and Food & Dining should share a bucket")
	}
	if SameCategoryBucket("Food", "Bills") {
		t.Error("Food and Bills should not share a bucket")
	}
	if !SameCategoryBucket("Pet Care", "Pet Care") {
		t.Error("a label always matches itself")
	}
}
