package handlers

import (
	"github.com/gofiber/fiber/v2"

	"craftmart/internal/catalog"
	"craftmart/internal/validate"
)

type CatalogHandler struct {
	Catalog catalog.Source
}

// Detail serves the raw product document plus the resolved default
// variation and its winning offer, so a product page can price without a
// second round-trip.
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	resp := fiber.Map{"product": p}
	if v, ok := catalog.DefaultVariation(p); ok {
		resp["defaultVariation"] = v.ID
		if o := catalog.ResolveOffer(p, v.ID); o != nil {
			resp["offer"] = o
		}
		price, currency := catalog.UnitPrice(p, v.ID)
		resp["unitPrice"] = price
		resp["currency"] = currency
	}
	return c.JSON(resp)
}

// Resolve re-runs offer resolution for a variation change on the product
// page.
func (h *CatalogHandler) Resolve(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	variationID := c.Query("variationId")
	price, currency := catalog.UnitPrice(p, variationID)
	resp := fiber.Map{"unitPrice": price, "currency": currency}
	if o := catalog.ResolveOffer(p, variationID); o != nil {
		resp["offer"] = o
	}
	return c.JSON(resp)
}

// Availability maps the winning offer's stock status for a variation.
func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(catalog.ResolveAvailability(p, c.Query("variationId")))
}
