package core

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{12000, "₹120"},
		{123456, "₹1,234.56"},
		{125000, "₹1,250"},
		{1230, "₹12.3"},
		{1, "₹0.01"},
		{12500000, "₹1,25,000"}, // Indian grouping past a lakh
	}
	for _, tc := range cases {
		if got := FormatAmount(Money{Cents: tc.cents}); got != tc.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
