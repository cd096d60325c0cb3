package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ConvertFunc converts an amount between two ISO currency codes. It is
// passed explicitly wherever cross-currency display is needed; nothing in
// this module reaches for ambient rate state.
type ConvertFunc func(amount float64, from, to string) float64

// Identity returns the amount unchanged regardless of currencies.
func Identity(amount float64, _, _ string) float64 { return amount }

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Price coerces an arbitrary value to a non-negative price. Strings may
// carry currency noise ("₹1,200", "$ 45.50"); everything outside [0-9.-]
// is stripped before parsing. Unparseable or negative inputs yield 0.
func Price(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(stripNumeric(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Qty coerces an arbitrary value to a positive integer quantity by
// truncation. Non-finite or non-positive inputs yield 1.
func Qty(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(stripNumeric(x), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	n := int(f)
	if n < 1 {
		return 1
	}
	return n
}

func stripNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Round2 rounds to two decimal places (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Format renders an amount as a localized currency string. INR uses the
// Indian 3-then-2 digit grouping; everything else groups by thousands.
// Unknown currencies fall back to a "CODE " prefix.
func Format(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "INR"
	}
	neg := amount < 0
	fixed := decimal.NewFromFloat(math.Abs(amount)).Round(2).StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped string
	if code == "INR" {
		grouped = groupIndian(intPart)
	} else {
		grouped = groupThousands(intPart)
	}

	sym, ok := symbols[code]
	if !ok {
		sym = code + " "
	}
	out := sym + grouped + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// groupIndian groups the last three digits, then pairs: 1234567 -> 12,34,567.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	rest := digits[:n-3]
	var parts []string
	for len(rest) > 2 {
		parts = append([]string{rest[len(rest)-2:]}, parts...)
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		parts = append([]string{rest}, parts...)
	}
	parts = append(parts, digits[n-3:])
	return strings.Join(parts, ",")
}
