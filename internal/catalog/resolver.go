package catalog

// DefaultVariation returns the variation flagged IsDefault, or the first
// one when none is flagged. Products without variations return false.
func DefaultVariation(p Product) (Variation, bool) {
	if len(p.Variations) == 0 {
		return Variation{}, false
	}
	for _, v := range p.Variations {
		if v.IsDefault {
			return v, true
		}
	}
	return p.Variations[0], true
}

// ResolveOffer picks the seller offer for a variation. Among offers that
// quote the variation, the lowest price wins; ties keep the earliest offer
// in the product's offer list. When no offer quotes the variation the
// first offer is returned with its price unresolved, so callers must fall
// back to the variation's own price. A product with zero offers yields nil.
//
// Pure by construction: it is re-run on every variation change and holds
// no memoized state.
func ResolveOffer(p Product, variationID string) *Offer {
	if len(p.Offers) == 0 {
		return nil
	}
	best := -1
	bestPrice := 0.0
	for i, o := range p.Offers {
		price, ok := o.PricingByVariation[variationID]
		if !ok {
			continue
		}
		if best == -1 || price < bestPrice {
			best = i
			bestPrice = price
		}
	}
	if best == -1 {
		return &p.Offers[0]
	}
	return &p.Offers[best]
}

// UnitPrice resolves the effective unit price for a variation, walking the
// fallback chain: offer's variation price, then the variation's base
// price, then the product's base price. The returned currency follows the
// same chain.
func UnitPrice(p Product, variationID string) (float64, string) {
	currency := p.Pricing.Currency
	var variation *Variation
	for i := range p.Variations {
		if p.Variations[i].ID == variationID {
			variation = &p.Variations[i]
			break
		}
	}
	if variation != nil && variation.Currency != "" {
		currency = variation.Currency
	}

	if o := ResolveOffer(p, variationID); o != nil {
		if price, ok := o.PricingByVariation[variationID]; ok {
			return price, currency
		}
	}
	if variation != nil && variation.Price > 0 {
		return variation.Price, currency
	}
	return p.Pricing.BasePrice, p.Pricing.Currency
}

// Availability describes whether the resolved offer can ship a variation.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Seller string `json:"seller,omitempty"`
	ETA    string `json:"eta,omitempty"`
}

// ResolveAvailability maps the chosen offer's stock status and delivery
// estimate for a variation. No offers means nothing to ship.
func ResolveAvailability(p Product, variationID string) Availability {
	o := ResolveOffer(p, variationID)
	if o == nil {
		return Availability{Status: "OUT_OF_STOCK"}
	}
	status := o.StockStatus
	if status == "" {
		status = "IN_STOCK"
	}
	return Availability{Status: status, Seller: o.SellerName, ETA: o.DeliveryEstimate}
}

// CartPayload builds the raw add-to-cart request for a product at a chosen
// variation, with the unit price already resolved through the offer chain.
// The result feeds the line-item normalizer unchanged.
func CartPayload(p Product, variationID string, qty int) map[string]any {
	price, currency := UnitPrice(p, variationID)
	raw := map[string]any{
		"productId": p.ID,
		"title":     p.Title,
		"price":     price,
		"currency":  currency,
		"quantity":  qty,
	}
	if p.Kind != "" {
		raw["kind"] = p.Kind
	}
	if variationID != "" {
		raw["variation"] = variationID
	}
	if o := ResolveOffer(p, variationID); o != nil {
		raw["seller"] = o.SellerName
	}
	return raw
}
