package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"$1,234.50", 123450, true},
		{"1 000", 100000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyDivTruncates(t *testing.T) {
	cases := []struct {
		m    int64
		n    int64
		want int64
	}{
		{1001, 2, 500},
		{-1001, 2, -500},
		{400, 4, 100},
		{100, 3, 33},
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := Cents(tc.m).Div(tc.n).Cents; got != tc.want {
			t.Fatalf("%d/%d expected %d, got %d", tc.m, tc.n, tc.want, got)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		123450:    "$1,234.50",
		-300:      "-$3.00",
		100000000: "$1,000,000.00",
	}
	for cents, want := range cases {
		if got := Cents(cents).Format(); got != want {
			t.Fatalf("%d expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyInput(t *testing.T) {
	if got := Cents(123450).Input(); got != "1234.50" {
		t.Fatalf("expected 1234.50, got %q", got)
	}
	if got := (Money{}).Input(); got != "" {
		t.Fatalf("expected empty input for zero, got %q", got)
	}
}
