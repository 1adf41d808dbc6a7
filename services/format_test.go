package services

import "testing"

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 5,00"},
		{999.9, "R$ 999,90"},
		{1000, "R$ 1.000,00"},
		{1234567.89, "R$ 1.234.567,89"},
		{-1500.5, "-R$ 1.500,50"},
		{0.005, "R$ 0,01"},
	}
	for _, tt := range tests {
		if got := FormatBRL(tt.amount); got != tt.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{10, "10%"},
		{7.5, "7.5%"},
		{-12.25, "-12.25%"},
		{0, "0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestDescribeAdjustment(t *testing.T) {
	tests := []struct {
		kind  string
		value float64
		want  string
	}{
		{AdjustPercent, 10, "10%"},
		{AdjustFixed, 1500, "= R$ 1.500,00"},
		{AdjustHonorarium, 7.5, "honorarium 7.5%"},
		{"", 0, ""},
	}
	for _, tt := range tests {
		if got := DescribeAdjustment(tt.kind, tt.value); got != tt.want {
			t.Errorf("DescribeAdjustment(%q, %v) = %q, want %q", tt.kind, tt.value, got, tt.want)
		}
	}
}
