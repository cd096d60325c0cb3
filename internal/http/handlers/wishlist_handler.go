package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"craftmart/internal/cart"
	applog "craftmart/internal/log"
	"craftmart/internal/repos"
	"craftmart/internal/wishlist"
)

type WishlistHandler struct {
	Wish *wishlist.Service
}

func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item payload"})
	}
	it, err := h.Wish.Save(sid, raw)
	if err != nil {
		if errors.Is(err, cart.ErrNoIdentity) {
			applog.Warn(c, "wishlist.save.no_identity", nil)
			return h.List(c)
		}
		applog.Error(c, "wishlist.save.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save item"})
	}
	applog.Info(c, "wishlist.save", map[string]any{"id": it.ID})
	return h.List(c)
}

func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil || body.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	if err := h.Wish.Unsave(sid, body.ID); err != nil {
		applog.Error(c, "wishlist.unsave.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not remove item"})
	}
	return h.List(c)
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	rows, err := h.Wish.List(ensureSID(c))
	if err != nil {
		applog.Error(c, "wishlist.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load wishlist"})
	}
	if rows == nil {
		rows = []repos.WishlistRow{}
	}
	return c.JSON(fiber.Map{"items": rows})
}
