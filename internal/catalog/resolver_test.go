package catalog_test

import (
	"testing"

	"craftmart/internal/catalog"
)

func plywood() catalog.Product {
	return catalog.Product{
		ID:      "ply-001",
		Title:   "Birch Plywood",
		Pricing: catalog.Pricing{Currency: "INR", BasePrice: 340},
		Variations: []catalog.Variation{
			{ID: "x", Price: 340},
			{ID: "y", Price: 290, IsDefault: true},
		},
		Offers: []catalog.Offer{
			{SellerID: "a", SellerName: "BuildMart", PricingByVariation: map[string]float64{"x": 325}},
			{SellerID: "b", SellerName: "TimberCo", PricingByVariation: map[string]float64{"y": 280}},
			{SellerID: "c", SellerName: "FloorHub", PricingByVariation: map[string]float64{"x": 329}},
		},
	}
}

func TestResolveOffer_CheapestWins(t *testing.T) {
	p := plywood()
	o := catalog.ResolveOffer(p, "x")
	if o == nil || o.SellerID != "a" {
		t.Fatalf("want offer a (325 beats 329), got %+v", o)
	}
}

func TestResolveOffer_TieKeepsFirst(t *testing.T) {
	p := plywood()
	p.Offers[2].PricingByVariation["x"] = 325 // tie with offer a
	o := catalog.ResolveOffer(p, "x")
	if o == nil || o.SellerID != "a" {
		t.Fatalf("tie must keep array order, got %+v", o)
	}
}

func TestResolveOffer_NoVariationPriceFallsBackToFirst(t *testing.T) {
	p := plywood()
	o := catalog.ResolveOffer(p, "z") // nobody quotes z
	if o == nil || o.SellerID != "a" {
		t.Fatalf("want first offer as unresolved fallback, got %+v", o)
	}
	if _, ok := o.PricingByVariation["z"]; ok {
		t.Fatal("fallback offer should not quote z")
	}
}

func TestResolveOffer_ZeroOffers(t *testing.T) {
	p := plywood()
	p.Offers = nil
	if o := catalog.ResolveOffer(p, "x"); o != nil {
		t.Fatalf("want nil for zero offers, got %+v", o)
	}
}

func TestUnitPrice_FallbackChain(t *testing.T) {
	p := plywood()

	// offer-resolved price
	if price, cur := catalog.UnitPrice(p, "x"); price != 325 || cur != "INR" {
		t.Fatalf("want 325 INR via offer, got %v %s", price, cur)
	}

	// no offer quote for the variation -> variation price
	if price, _ := catalog.UnitPrice(p, "z"); price != 340 {
		// z is not a variation either, so base price applies
		t.Fatalf("want base price 340, got %v", price)
	}
	p.Offers = nil
	if price, _ := catalog.UnitPrice(p, "y"); price != 290 {
		t.Fatalf("want variation price 290, got %v", price)
	}
	p.Variations = nil
	if price, _ := catalog.UnitPrice(p, "y"); price != 340 {
		t.Fatalf("want base price 340, got %v", price)
	}
}

func TestDefaultVariation(t *testing.T) {
	p := plywood()
	v, ok := catalog.DefaultVariation(p)
	if !ok || v.ID != "y" {
		t.Fatalf("want flagged default y, got %+v", v)
	}
	p.Variations[1].IsDefault = false
	v, ok = catalog.DefaultVariation(p)
	if !ok || v.ID != "x" {
		t.Fatalf("want first variation when none flagged, got %+v", v)
	}
	p.Variations = nil
	if _, ok := catalog.DefaultVariation(p); ok {
		t.Fatal("want no default for variation-less product")
	}
}

func TestCartPayload_CarriesResolvedSeller(t *testing.T) {
	raw := catalog.CartPayload(plywood(), "x", 2)
	if raw["seller"] != "BuildMart" {
		t.Fatalf("want cheapest seller BuildMart, got %v", raw["seller"])
	}
	if raw["price"] != 325.0 {
		t.Fatalf("want resolved price 325, got %v", raw["price"])
	}
	if raw["quantity"] != 2 {
		t.Fatalf("want quantity 2, got %v", raw["quantity"])
	}
}
