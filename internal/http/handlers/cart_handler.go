package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"craftmart/internal/cart"
	"craftmart/internal/catalog"
	applog "craftmart/internal/log"
	"craftmart/internal/pricing"
	"craftmart/internal/session"
	"craftmart/internal/validate"
)

type CartHandler struct {
	Sessions *session.Manager
	Catalog  catalog.Source
	Engine   *pricing.Engine
	Currency session.CurrencyContext
}

type cartView struct {
	Items     []cart.LineItem       `json:"items"`
	Selection []string              `json:"selection"`
	Mode      cart.Mode             `json:"mode"`
	Coupon    string                `json:"coupon,omitempty"`
	Groups    []pricing.SellerGroup `json:"groups"`
}

func (h *CartHandler) view(st *session.State) cartView {
	items := st.Cart.Items()
	return cartView{
		Items:     items,
		Selection: st.Cart.Selected(),
		Mode:      st.Cart.Mode(),
		Coupon:    st.CouponCode,
		Groups:    pricing.GroupBySeller(items),
	}
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))
	return c.JSON(h.view(st))
}

// Add takes an arbitrary raw item. An unresolvable identity is a silent
// no-op: logged, nothing added, nothing surfaced.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item payload"})
	}
	if _, err := st.Cart.Add(c.Context(), raw); err != nil {
		if errors.Is(err, cart.ErrNoIdentity) {
			applog.Warn(c, "cart.add.no_identity", map[string]any{"keys": rawKeys(raw)})
			return c.JSON(h.view(st))
		}
		return err
	}
	applog.Info(c, "cart.add", nil)
	return c.JSON(h.view(st))
}

// AddFromCatalog resolves a product and variation through the offer
// resolver before normalizing, so the cheapest eligible seller's price
// lands on the line item.
func (h *CartHandler) AddFromCatalog(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var body struct {
		ProductID   string `json:"productId"`
		VariationID string `json:"variationId"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	productID, ok := validate.ID(body.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	p, err := h.Catalog.Product(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	variationID := body.VariationID
	if variationID == "" {
		if v, ok := catalog.DefaultVariation(p); ok {
			variationID = v.ID
		}
	}
	// Quantity may also arrive as a form/query value from older UI calls.
	qty := body.Quantity
	if qty < 1 {
		qty = validate.Qty(c.Query("qty"))
	}
	if _, err := st.Cart.Add(c.Context(), catalog.CartPayload(p, variationID, qty)); err != nil {
		return err
	}
	applog.Info(c, "cart.add.catalog", map[string]any{"product": productID, "variation": variationID})
	return c.JSON(h.view(st))
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var body struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	st.Cart.UpdateQuantity(c.Context(), body.ID, body.Quantity)
	return c.JSON(h.view(st))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	st.Cart.Remove(c.Context(), body.ID)
	return c.JSON(h.view(st))
}

// Refresh re-reads the cart from its store, dropping any in-memory state
// the store no longer has. Other tabs' writes show up here.
func (h *CartHandler) Refresh(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))
	st.Cart.Refresh(c.Context())
	return c.JSON(h.view(st))
}

func (h *CartHandler) ToggleSelection(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	st.Cart.Toggle(body.ID)
	return c.JSON(h.view(st))
}

// Pricing computes the priced view of the current selection. Coupon
// eligibility is re-derived here every call; an applied-but-ineligible
// code simply prices at zero discount.
func (h *CartHandler) Pricing(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	result := h.Engine.Compute(pricing.Input{
		Items:      st.Cart.Items(),
		Selected:   st.Cart.Selected(),
		CouponCode: st.CouponCode,
		GSTInvoice: c.QueryBool("gstInvoice"),
		Display:    h.Currency.Display,
		Convert:    h.Currency.Convert,
	})
	return c.JSON(result)
}

func rawKeys(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	return keys
}
