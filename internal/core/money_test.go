package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"85.50", "85.5", true},
		{"4.5", "4.5", true},
		{"0", "0", true},
		{"120", "120", true},
		{"1.230", "1.23", true}, // trailing zero is still two places
		{"1.005", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
		{"100000000", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	cases := map[string]int64{
		"0":       0,
		"0.01":    1,
		"85.50":   8550,
		"3500.00": 350000,
		"-15.99":  -1599,
	}
	for in, want := range cases {
		d := decimal.RequireFromString(in)
		cents, err := DecimalToCents(d)
		if err != nil || cents != want {
			t.Fatalf("%s expected %d cents, got %d (err=%v)", in, want, cents, err)
		}
		if back := CentsToDecimal(cents); !back.Equal(d) {
			t.Fatalf("%d cents expected %s, got %s", cents, d, back)
		}
	}

	if _, err := DecimalToCents(decimal.RequireFromString("0.001")); err == nil {
		t.Fatalf("expected error for three decimal places")
	}
}
