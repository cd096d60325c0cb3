package catalog

import "context"

// Product is a read-only catalog document. It is sourced from the external
// catalog service and never mutated here.
type Product struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Kind             string            `json:"kind,omitempty"` // product | service | material
	Pricing          Pricing           `json:"pricing"`
	Variations       []Variation       `json:"variations,omitempty"`
	Offers           []Offer           `json:"offers,omitempty"`
	Addons           []Addon           `json:"addons,omitempty"`
	SubscribeOptions []SubscribeOption `json:"subscribeOptions,omitempty"`
}

type Pricing struct {
	Currency  string  `json:"currency"`
	BasePrice float64 `json:"basePrice"`
	Unit      string  `json:"unit,omitempty"`
}

// Variation is one purchasable configuration (size, finish, packaging).
type Variation struct {
	ID           string            `json:"id"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Price        float64           `json:"price"`
	Currency     string            `json:"currency,omitempty"`
	MinQty       int               `json:"minQty,omitempty"`
	LeadTimeDays int               `json:"leadTimeDays,omitempty"`
	IsDefault    bool              `json:"isDefault,omitempty"`
}

// Offer carries one seller's terms for a product. PricingByVariation is
// keyed by variation id; a missing key means the seller does not quote
// that configuration.
type Offer struct {
	SellerID           string             `json:"sellerId"`
	SellerName         string             `json:"sellerName"`
	PricingByVariation map[string]float64 `json:"pricingByVariation,omitempty"`
	MOQ                int                `json:"moq,omitempty"`
	DeliveryEstimate   string             `json:"deliveryEstimate,omitempty"`
	StockStatus        string             `json:"stockStatus,omitempty"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
}

type Addon struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

type SubscribeOption struct {
	ID              string  `json:"id"`
	DiscountPercent float64 `json:"discountPercent"`
	CadenceDays     int     `json:"cadenceDays"`
	MinQty          int     `json:"minQty,omitempty"`
}

// Source hands out catalog documents. The real implementation is a remote
// service; this core only ever reads through the interface.
type Source interface {
	Product(ctx context.Context, id string) (Product, error)
}
