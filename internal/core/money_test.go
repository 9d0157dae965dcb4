package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer", input: "250", want: 25000},
		{name: "zero allowed", input: "0", want: 0},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.346", want: 1235},
		{name: "leading dot", input: ".50", want: 50},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "plus sign rejected", input: "+5", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "garbage rejected", input: "abc", wantErr: true},
		{name: "two dots rejected", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "json number", input: `1234.5`, want: 123450},
		{name: "decimal string", input: `"1234.50"`, want: 123450},
		{name: "null coerces to zero", input: `null`, want: 0},
		{name: "garbage coerces to zero", input: `"abc"`, want: 0},
		{name: "negative coerces to zero", input: `"-10"`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(tt.input), &m); err != nil {
				t.Fatalf("Unmarshal(%s) unexpected error: %v", tt.input, err)
			}
			if m.Cents != tt.want {
				t.Errorf("Unmarshal(%s) = %d cents, want %d", tt.input, m.Cents, tt.want)
			}
		})
	}
}

func TestMoneyMarshalJSON(t *testing.T) {
	out, err := json.Marshal(Money{Cents: 123450})
	if err != nil {
		t.Fatalf("Marshal unexpected error: %v", err)
	}
	if string(out) != "1234.50" {
		t.Errorf("Marshal = %s, want 1234.50", out)
	}
}

func TestMalformedAmountDoesNotAbortBatch(t *testing.T) {
	payload := `[
		{"id":1,"type":"income","category":"Salary","amount":"1000.00","date":"2026-08-01"},
		{"id":2,"type":"expense","category":"Food","amount":"oops","date":"2026-08-02"}
	]`
	var ts []Transaction
	if err := json.Unmarshal([]byte(payload), &ts); err != nil {
		t.Fatalf("batch decode failed: %v", err)
	}
	if len(ts) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ts))
	}
	if ts[0].Amount.Cents != 100000 {
		t.Errorf("first amount = %d, want 100000", ts[0].Amount.Cents)
	}
	if ts[1].Amount.Cents != 0 {
		t.Errorf("malformed amount = %d, want 0", ts[1].Amount.Cents)
	}
}
