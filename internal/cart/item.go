package cart

import (
	"errors"
	"strconv"
	"strings"

	"craftmart/internal/money"
)

// ErrNoIdentity means the incoming item carried nothing resolvable as an
// identity, not even a title. Callers no-op on it; a missing identity is a
// caller data-quality bug, not a recoverable runtime condition.
var ErrNoIdentity = errors.New("cart: item identity unresolvable")

// Namespace prefixes title-derived fallback ids so a cart entry and a
// wishlist entry for the same untagged product never share an identity.
type Namespace string

const (
	NamespaceCart Namespace = "item"
	NamespaceWish Namespace = "wish"
)

// Addon is a bundled extra priced on top of the line's unit price.
type Addon struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// LineItem is the canonical unit of cart state.
type LineItem struct {
	ID               string         `json:"id"`
	Title            string         `json:"title,omitempty"`
	Price            float64        `json:"price"`
	Quantity         int            `json:"quantity"`
	Currency         string         `json:"currency,omitempty"`
	Seller           string         `json:"seller,omitempty"`
	Variation        string         `json:"variation,omitempty"`
	Addons           []Addon        `json:"addons,omitempty"`
	Kind             string         `json:"kind,omitempty"`
	SubscriptionPlan string         `json:"subscriptionPlan,omitempty"`
	Schedule         string         `json:"schedule,omitempty"`
	TotalPrice       float64        `json:"totalPrice"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// LineTotal is the amount this line contributes before add-ons. TotalPrice
// wins over price times quantity whenever it is set; callers override it
// deliberately for bundle economics and the engine must not recompute it
// away.
func (it LineItem) LineTotal() float64 {
	if it.TotalPrice > 0 {
		return it.TotalPrice
	}
	return it.Price * float64(it.Quantity)
}

// AddonTotal sums the bundled add-on prices once per line.
func (it LineItem) AddonTotal() float64 {
	total := 0.0
	for _, a := range it.Addons {
		total += a.Price
	}
	return total
}

// IdentityProbe extracts a candidate identity from a raw item, or "" when
// its strategy does not apply.
type IdentityProbe func(raw map[string]any) string

// fieldProbe reads one named field as a string identity.
func fieldProbe(name string) IdentityProbe {
	return func(raw map[string]any) string {
		return stringField(raw, name)
	}
}

// slugProbe derives a namespaced slug from the display title. Deterministic
// so repeated adds of the same unidentified item merge instead of
// duplicating.
func slugProbe(ns Namespace) IdentityProbe {
	return func(raw map[string]any) string {
		for _, f := range []string{"title", "name"} {
			if s := stringField(raw, f); s != "" {
				return string(ns) + "-" + Slugify(s)
			}
		}
		return ""
	}
}

// identityProbes is the ordered strategy list for identity resolution.
// Order matters: the first hit wins.
func identityProbes(ns Namespace) []IdentityProbe {
	return []IdentityProbe{
		fieldProbe("productId"),
		fieldProbe("id"),
		fieldProbe("_id"),
		fieldProbe("slug"),
		fieldProbe("sku"),
		fieldProbe("code"),
		fieldProbe("key"),
		slugProbe(ns),
	}
}

// ResolveIdentity runs the probe list in priority order.
func ResolveIdentity(raw map[string]any, ns Namespace) string {
	for _, probe := range identityProbes(ns) {
		if id := probe(raw); id != "" {
			return id
		}
	}
	return ""
}

// Normalize converts an arbitrary incoming add-to-cart request into a
// canonical line item. Price and quantity are coerced leniently; the only
// hard failure is an unresolvable identity.
func Normalize(raw map[string]any, ns Namespace) (*LineItem, error) {
	id := ResolveIdentity(raw, ns)
	if id == "" {
		return nil, ErrNoIdentity
	}

	it := &LineItem{
		ID:               id,
		Price:            money.Price(raw["price"]),
		Currency:         stringField(raw, "currency"),
		Seller:           stringField(raw, "seller"),
		Variation:        stringField(raw, "variation"),
		Kind:             stringField(raw, "kind"),
		SubscriptionPlan: stringField(raw, "subscriptionPlan"),
		Schedule:         stringField(raw, "schedule"),
	}
	for _, f := range []string{"title", "name"} {
		if s := stringField(raw, f); s != "" {
			it.Title = s
			break
		}
	}
	if q, ok := raw["quantity"]; ok {
		it.Quantity = money.Qty(q)
	} else {
		it.Quantity = money.Qty(raw["qty"])
	}
	if it.Currency == "" {
		it.Currency = "INR"
	}
	if it.Kind == "" {
		it.Kind = "product"
	}
	it.Addons = normalizeAddons(raw["addons"])
	if m, ok := raw["metadata"].(map[string]any); ok {
		it.Metadata = m
	}

	if HasTotalOverride(raw) {
		it.TotalPrice = money.Price(raw["totalPrice"])
	} else {
		it.TotalPrice = it.Price * float64(it.Quantity)
	}
	return it, nil
}

// HasTotalOverride reports whether the caller supplied an explicit,
// parseable totalPrice. Merges must honor it instead of recomputing.
func HasTotalOverride(raw map[string]any) bool {
	v, ok := raw["totalPrice"]
	return ok && money.Price(v) > 0
}

func normalizeAddons(v any) []Addon {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Addon
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Addon{
			ID:    stringField(m, "id"),
			Name:  stringField(m, "name"),
			Price: money.Price(m["price"]),
		})
	}
	return out
}

func stringField(raw map[string]any, name string) string {
	switch v := raw[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// Slugify lowercases and collapses everything non-alphanumeric to single
// hyphens: "Birch  Plywood (18mm)" -> "birch-plywood-18mm".
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
