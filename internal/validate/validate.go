package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCoupon = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)
	reHex24  = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// ID validates a simple resource identifier (product/variation/cart ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// CouponCode uppercases and validates a coupon code.
func CouponCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s != "" && reCoupon.MatchString(s)
}

// ObjectID reports whether s is a 24-hex store identifier.
func ObjectID(s string) bool {
	return reHex24.MatchString(strings.TrimSpace(s))
}

// Qty parses a quantity form value; bad input falls back to 1, with a
// clamp against abusive values.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 999 {
		return 999
	}
	return n
}

// Notes trims free-text checkout notes to a sane length.
func Notes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}
