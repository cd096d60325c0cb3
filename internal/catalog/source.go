package catalog

import (
	"context"
	"fmt"
)

// StaticSource serves a fixed product set. It stands in for the remote
// catalog service during local runs and tests.
type StaticSource struct {
	products map[string]Product
}

func NewStaticSource(products ...Product) *StaticSource {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &StaticSource{products: m}
}

func (s *StaticSource) Product(_ context.Context, id string) (Product, error) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("catalog: product %q not found", id)
	}
	return p, nil
}

// DemoSource seeds a small cross-vertical catalog: a material with seller
// offers per variation, a studio service with add-ons and booking, and a
// consumable with subscription plans.
func DemoSource() *StaticSource {
	return NewStaticSource(
		Product{
			ID:    "ply-18mm-001",
			Title: "Birch Plywood Sheet",
			Kind:  "material",
			Pricing: Pricing{Currency: "INR", BasePrice: 340, Unit: "sheet"},
			Variations: []Variation{
				{ID: "v-12mm", Attributes: map[string]string{"thickness": "12mm"}, Price: 290, MinQty: 5, LeadTimeDays: 3},
				{ID: "v-18mm", Attributes: map[string]string{"thickness": "18mm"}, Price: 340, MinQty: 5, LeadTimeDays: 3, IsDefault: true},
			},
			Offers: []Offer{
				{SellerID: "s-buildmart", SellerName: "BuildMart", PricingByVariation: map[string]float64{"v-12mm": 280, "v-18mm": 325}, MOQ: 5, DeliveryEstimate: "3-5 days", StockStatus: "IN_STOCK"},
				{SellerID: "s-floorhub", SellerName: "FloorHub", PricingByVariation: map[string]float64{"v-18mm": 329}, MOQ: 10, DeliveryEstimate: "2-4 days", StockStatus: "LOW_STOCK"},
			},
		},
		Product{
			ID:    "studio-interior-002",
			Title: "Interior Design Consultation",
			Kind:  "service",
			Pricing: Pricing{Currency: "INR", BasePrice: 4500, Unit: "session"},
			Addons: []Addon{
				{ID: "ad-3d", Name: "3D Render Pack", Price: 1500, Currency: "INR"},
				{ID: "ad-site", Name: "On-site Visit", Price: 800, Currency: "INR"},
			},
		},
		Product{
			ID:    "finish-wax-003",
			Title: "Hardwax Oil Finish 1L",
			Kind:  "product",
			Pricing: Pricing{Currency: "INR", BasePrice: 1200, Unit: "can"},
			Offers: []Offer{
				{SellerID: "s-floorhub", SellerName: "FloorHub", PricingByVariation: map[string]float64{}, DeliveryEstimate: "2-4 days", StockStatus: "IN_STOCK"},
			},
			SubscribeOptions: []SubscribeOption{
				{ID: "sub-quarterly", DiscountPercent: 8, CadenceDays: 90, MinQty: 2},
			},
		},
	)
}
