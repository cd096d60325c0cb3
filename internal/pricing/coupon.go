package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCouponIneligible is the apply-time rejection: the code is unknown or
// the current selection does not satisfy its condition. Distinct from the
// silent per-computation re-evaluation, which just yields zero discount.
var ErrCouponIneligible = errors.New("coupon not applicable")

type CouponType string

const (
	CouponPercent CouponType = "percent"
	CouponFlat    CouponType = "flat"
)

// Condition decides eligibility from the selected subtotal and the number
// of distinct sellers in the selection.
type Condition func(subtotal decimal.Decimal, sellerCount int) bool

// Coupon is a static rule. New coupons are data: add an entry to the
// catalog, never a branch to the engine.
type Coupon struct {
	Code        string
	Type        CouponType
	Value       decimal.Decimal
	Condition   Condition
	Description string
}

// Eligible re-evaluates the condition. Nil conditions always pass.
func (c Coupon) Eligible(subtotal decimal.Decimal, sellerCount int) bool {
	if c.Condition == nil {
		return true
	}
	return c.Condition(subtotal, sellerCount)
}

// Discount computes the coupon's value against a subtotal. An ineligible
// coupon contributes zero without being un-applied; it comes back on its
// own if the selection satisfies the condition again. Flat values are not
// pro-rated by subtotal size.
func (c Coupon) Discount(subtotal decimal.Decimal, sellerCount int) decimal.Decimal {
	if !c.Eligible(subtotal, sellerCount) {
		return decimal.Zero
	}
	switch c.Type {
	case CouponPercent:
		return subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
	case CouponFlat:
		return c.Value
	}
	return decimal.Zero
}

// Catalog is the static coupon rule set, keyed by upper-cased code.
type Catalog struct {
	rules map[string]Coupon
}

func NewCatalog(coupons ...Coupon) *Catalog {
	rules := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		rules[strings.ToUpper(c.Code)] = c
	}
	return &Catalog{rules: rules}
}

func (ctl *Catalog) Find(code string) (Coupon, bool) {
	c, ok := ctl.rules[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Validate is the hard apply-time check. It returns the coupon's
// human-readable requirement with the error so the UI can explain the
// rejection.
func (ctl *Catalog) Validate(code string, subtotal decimal.Decimal, sellerCount int) (Coupon, error) {
	c, ok := ctl.Find(code)
	if !ok {
		return Coupon{}, fmt.Errorf("unknown code %q: %w", code, ErrCouponIneligible)
	}
	if !c.Eligible(subtotal, sellerCount) {
		return Coupon{}, fmt.Errorf("%s requires: %s: %w", c.Code, c.Description, ErrCouponIneligible)
	}
	return c, nil
}

// DefaultCatalog holds the built-in marketplace coupons.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Coupon{
			Code:  "BULK5",
			Type:  CouponPercent,
			Value: decimal.NewFromInt(5),
			Condition: func(subtotal decimal.Decimal, _ int) bool {
				return subtotal.GreaterThanOrEqual(decimal.NewFromInt(50000))
			},
			Description: "selected items worth ₹50,000 or more",
		},
		Coupon{
			Code:  "FREIGHT1000",
			Type:  CouponFlat,
			Value: decimal.NewFromInt(1000),
			Condition: func(_ decimal.Decimal, sellerCount int) bool {
				return sellerCount > 1
			},
			Description: "items from at least 2 different sellers",
		},
	)
}
