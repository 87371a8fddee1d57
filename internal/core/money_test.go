package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1200", 120000, true},
		{"£1,200.50", 120050, true},
		{"$45.99", 4599, true},
		{"€ 12.34", 1234, true},
		{"-85.20", -8520, true},
		{"+10", 1000, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{".50", 50, true},
		{"abc", 0, false},
		{"£", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -150}).Abs(); got.Cents != 150 {
		t.Fatalf("expected 150, got %d", got.Cents)
	}
	if got := (Money{Cents: 150}).Abs(); got.Cents != 150 {
		t.Fatalf("expected 150, got %d", got.Cents)
	}
}
