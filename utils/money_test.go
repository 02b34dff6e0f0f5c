package utils

import "testing"

func TestFormatCOP(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "$0"},
		{500, "$500"},
		{12500, "$12.500"},
		{215000, "$215.000"},
		{1234567, "$1.234.567"},
		{-50000, "-$50.000"},
	}
	for _, tt := range tests {
		if got := FormatCOP(tt.amount); got != tt.want {
			t.Errorf("FormatCOP(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPerUnit(t *testing.T) {
	tests := []struct {
		amount   int64
		decimals int
		want     string
	}{
		{430, 2, "$4,3 c/u"},
		{550, 2, "$5,5 c/u"},
		{500, 2, "$5 c/u"},
		{430, 0, "$430 c/u"},
	}
	for _, tt := range tests {
		if got := FormatPerUnit(tt.amount, tt.decimals); got != tt.want {
			t.Errorf("FormatPerUnit(%d, %d) = %q, want %q", tt.amount, tt.decimals, got, tt.want)
		}
	}
}
