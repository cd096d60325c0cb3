package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"craftmart/internal/checkout"
	applog "craftmart/internal/log"
	"craftmart/internal/repos"
	"craftmart/internal/session"
	"craftmart/internal/validate"
)

type CheckoutHandler struct {
	Sessions *session.Manager
	Checkout *checkout.Service
	Orders   *repos.OrderRepo
}

// Submit places an order for the selected subset of the cart. Failures
// surface with their reason; the cart only changes on acceptance, and then
// only the submitted items leave it.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	st := h.Sessions.Get(c.Context(), sid)

	var opts checkout.Options
	if err := c.BodyParser(&opts); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid checkout payload"})
	}
	opts.Notes = validate.Notes(opts.Notes)
	if opts.CouponCode == "" {
		opts.CouponCode = st.CouponCode
	}

	auth := session.FromHeaders(c.Get("Authorization"), c.Get("X-Role"))

	receipt, err := h.Checkout.Submit(c.Context(), st.Cart, opts)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptySelection):
			applog.Warn(c, "checkout.empty", nil)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, checkout.ErrRejected):
			applog.Warn(c, "checkout.rejected", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		applog.Error(c, "checkout.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout unavailable, please retry"})
	}

	applog.Audit(c, "checkout.place", map[string]any{
		"order_id": receipt.OrderID,
		"items":    len(receipt.Items),
		"coupon":   opts.CouponCode,
		"role":     auth.Role,
	})
	return c.JSON(receipt)
}

// History lists this session's locally recorded orders.
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	orders, err := h.Checkout.History(ensureSID(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	if orders == nil {
		orders = []repos.OrderHeader{}
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// View returns one recorded order, session-scoped.
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	header, items, err := h.Orders.Get(oid)
	if err != nil || header.SessionID != c.Cookies("sid") {
		applog.Warn(c, "order.view.denied", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return c.JSON(fiber.Map{"order": header, "items": items})
}
