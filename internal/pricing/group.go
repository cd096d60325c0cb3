package pricing

import (
	"github.com/shopspring/decimal"

	"craftmart/internal/cart"
)

// PlatformSeller groups items that carry no seller of their own.
const PlatformSeller = "platform fulfilled"

type SellerGroup struct {
	Seller string          `json:"seller"`
	Items  []cart.LineItem `json:"items"`
}

// GroupBySeller partitions cart items into seller groups in first-seen
// order across the cart sequence.
func GroupBySeller(items []cart.LineItem) []SellerGroup {
	var groups []SellerGroup
	index := map[string]int{}
	for _, it := range items {
		seller := it.Seller
		if seller == "" {
			seller = PlatformSeller
		}
		i, ok := index[seller]
		if !ok {
			i = len(groups)
			index[seller] = i
			groups = append(groups, SellerGroup{Seller: seller})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// SelectedSubtotal sums line totals plus add-on prices over the selected
// ids only. The line total honors an explicit totalPrice override.
func SelectedSubtotal(items []cart.LineItem, selected []string) decimal.Decimal {
	sel := toSet(selected)
	total := decimal.Zero
	for _, it := range items {
		if _, ok := sel[it.ID]; !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(it.LineTotal()))
		total = total.Add(decimal.NewFromFloat(it.AddonTotal()))
	}
	return total
}

// DistinctSellers counts unique seller values among selected items. The
// implicit platform group counts as one seller.
func DistinctSellers(items []cart.LineItem, selected []string) int {
	sel := toSet(selected)
	seen := map[string]struct{}{}
	for _, it := range items {
		if _, ok := sel[it.ID]; !ok {
			continue
		}
		seller := it.Seller
		if seller == "" {
			seller = PlatformSeller
		}
		seen[seller] = struct{}{}
	}
	return len(seen)
}

// Intersect filters the selection down to ids actually present in the
// cart, keeping selection order. The engine never trusts a stale
// selection.
func Intersect(items []cart.LineItem, selected []string) []string {
	present := map[string]struct{}{}
	for _, it := range items {
		present[it.ID] = struct{}{}
	}
	var out []string
	for _, id := range selected {
		if _, ok := present[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
