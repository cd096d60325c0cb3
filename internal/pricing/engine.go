package pricing

import (
	"github.com/shopspring/decimal"

	"craftmart/internal/cart"
	"craftmart/internal/money"
)

var gstRate = decimal.RequireFromString("0.18")

// Engine prices the selected subset of a cart against the static coupon
// catalog. It holds no session state; everything varying per call arrives
// in the Input.
type Engine struct {
	Coupons *Catalog
}

func NewEngine(coupons *Catalog) *Engine {
	if coupons == nil {
		coupons = DefaultCatalog()
	}
	return &Engine{Coupons: coupons}
}

type Input struct {
	Items      []cart.LineItem
	Selected   []string
	CouponCode string
	GSTInvoice bool
	// SellerCountOverride replaces the derived distinct-seller count when
	// positive. Zero means derive from the selection.
	SellerCountOverride int
	// Display currency plus conversion primitive; both optional. The
	// engine never reads ambient currency state.
	Display string
	Convert money.ConvertFunc
}

type Amounts struct {
	Subtotal    string `json:"subtotal"`
	CouponValue string `json:"couponValue"`
	Tax         string `json:"tax"`
	GrandTotal  string `json:"grandTotal"`
}

type Result struct {
	Subtotal    float64       `json:"subtotal"`
	CouponCode  string        `json:"couponCode,omitempty"`
	CouponValue float64       `json:"couponValue"`
	Tax         float64       `json:"tax"`
	GrandTotal  float64       `json:"grandTotal"`
	Currency    string        `json:"currency"`
	SellerCount int           `json:"sellerCount"`
	Groups      []SellerGroup `json:"groups"`
	Display     Amounts       `json:"display"`
}

// Compute prices the selection: subtotal, soft-re-evaluated coupon
// discount, GST only when an invoice is requested, and a grand total
// clamped at zero. The selection is intersected with the cart first and
// never trusted as-is.
func (e *Engine) Compute(in Input) Result {
	selected := Intersect(in.Items, in.Selected)
	subtotal := SelectedSubtotal(in.Items, selected)

	sellerCount := DistinctSellers(in.Items, selected)
	if in.SellerCountOverride > 0 {
		sellerCount = in.SellerCountOverride
	}

	var discount decimal.Decimal
	code := ""
	if in.CouponCode != "" {
		if c, ok := e.Coupons.Find(in.CouponCode); ok {
			code = c.Code
			discount = c.Discount(subtotal, sellerCount)
		}
	}

	tax := decimal.Zero
	if in.GSTInvoice {
		tax = subtotal.Mul(gstRate).Round(2)
	}

	grand := subtotal.Sub(discount).Add(tax)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	currency := selectionCurrency(in.Items, selected)
	r := Result{
		Subtotal:    subtotal.InexactFloat64(),
		CouponCode:  code,
		CouponValue: discount.InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		GrandTotal:  grand.InexactFloat64(),
		Currency:    currency,
		SellerCount: sellerCount,
		Groups:      GroupBySeller(in.Items),
	}
	r.Display = e.display(r, in)
	return r
}

// display formats the computed amounts for the UI, converting to the
// session's display currency when a converter is supplied.
func (e *Engine) display(r Result, in Input) Amounts {
	currency := r.Currency
	convert := func(v float64) float64 { return v }
	if in.Display != "" && in.Convert != nil && in.Display != currency {
		from := currency
		convert = func(v float64) float64 { return in.Convert(v, from, in.Display) }
		currency = in.Display
	}
	return Amounts{
		Subtotal:    money.Format(convert(r.Subtotal), currency),
		CouponValue: money.Format(convert(r.CouponValue), currency),
		Tax:         money.Format(convert(r.Tax), currency),
		GrandTotal:  money.Format(convert(r.GrandTotal), currency),
	}
}

func selectionCurrency(items []cart.LineItem, selected []string) string {
	sel := toSet(selected)
	for _, it := range items {
		if _, ok := sel[it.ID]; ok && it.Currency != "" {
			return it.Currency
		}
	}
	return "INR"
}
