package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type WatchlistHandler struct {
	Watch *services.WatchlistService
}

type watchReq struct {
	ListingID string `json:"listingId"`
}

func (h *WatchlistHandler) List(c *fiber.Ctx) error {
	rows, err := h.Watch.List(ensureSID(c))
	if err != nil {
		return respondErr(c, "watchlist.list", err)
	}
	return c.JSON(fiber.Map{"count": len(rows), "items": rows})
}

func (h *WatchlistHandler) Save(c *fiber.Ctx) error {
	var req watchReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	id, ok := validate.ID(req.ListingID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid listingId"})
	}
	if err := h.Watch.Save(ensureSID(c), id); err != nil {
		return respondErr(c, "watchlist.save", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *WatchlistHandler) Unsave(c *fiber.Ctx) error {
	var req watchReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	id, ok := validate.ID(req.ListingID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid listingId"})
	}
	if err := h.Watch.Unsave(ensureSID(c), id); err != nil {
		return respondErr(c, "watchlist.unsave", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
