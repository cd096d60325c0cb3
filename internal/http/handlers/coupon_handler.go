package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "craftmart/internal/log"
	"craftmart/internal/pricing"
	"craftmart/internal/session"
	"craftmart/internal/validate"
)

type CouponHandler struct {
	Sessions *session.Manager
	Engine   *pricing.Engine
}

// Apply is the hard eligibility gate: the code must match the current
// selection right now, or the caller gets a reasoned rejection. Once
// applied, the code stays on the session and is softly re-evaluated on
// every pricing pass.
func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))

	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	code, ok := validate.CouponCode(body.Code)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid coupon code"})
	}

	items := st.Cart.Items()
	selected := st.Cart.Selected()
	subtotal := pricing.SelectedSubtotal(items, selected)
	sellers := pricing.DistinctSellers(items, selected)

	coupon, err := h.Engine.Coupons.Validate(code, subtotal, sellers)
	if err != nil {
		if errors.Is(err, pricing.ErrCouponIneligible) {
			applog.Warn(c, "coupon.reject", map[string]any{"code": code})
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}

	// Replaces any previously applied code.
	st.CouponCode = coupon.Code
	applog.Audit(c, "coupon.apply", map[string]any{"code": coupon.Code})
	return c.JSON(fiber.Map{"coupon": coupon.Code})
}

// Clear removes the applied code explicitly.
func (h *CouponHandler) Clear(c *fiber.Ctx) error {
	st := h.Sessions.Get(c.Context(), ensureSID(c))
	st.CouponCode = ""
	return c.JSON(fiber.Map{"coupon": ""})
}
