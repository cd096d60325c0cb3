package money_test

import (
	"math"
	"testing"

	"craftmart/internal/money"
)

func TestPrice_Coercion(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{325.0, 325},
		{float32(10), 10},
		{42, 42},
		{int64(7), 7},
		{"₹1,200", 1200},
		{"$ 45.50", 45.5},
		{"1200.75", 1200.75},
		{"free", 0},
		{"", 0},
		{-15.0, 0},
		{"-99", 0},
		{nil, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{map[string]any{}, 0},
	}
	for _, c := range cases {
		if got := money.Price(c.in); got != c.want {
			t.Errorf("Price(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestQty_Coercion(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{3.0, 3},
		{3.9, 3}, // truncation, never rounding up
		{1, 1},
		{"5", 5},
		{"0", 1},
		{"-2", 1},
		{0.0, 1},
		{-7.0, 1},
		{"lots", 1},
		{nil, 1},
		{math.NaN(), 1},
	}
	for _, c := range cases {
		if got := money.Qty(c.in); got != c.want {
			t.Errorf("Qty(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{2678.6, "INR", "₹2,678.60"},
		{1234567.0, "INR", "₹12,34,567.00"},
		{1234567.0, "USD", "$1,234,567.00"},
		{999.0, "EUR", "€999.00"},
		{50.5, "AUD", "AUD 50.50"},
		{-120.0, "INR", "-₹120.00"},
		{408.6, "", "₹408.60"},
	}
	for _, c := range cases {
		if got := money.Format(c.amount, c.currency); got != c.want {
			t.Errorf("Format(%v, %q) = %q, want %q", c.amount, c.currency, got, c.want)
		}
	}
}
