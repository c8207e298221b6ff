package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartPriceReq struct {
	ListingIDs []string `json:"listingIds"`
}

// Price computes totals for an ephemeral cart selection. Stale entries come
// back as a 409 listing the offending ids so the client can prune them.
func (h *CartHandler) Price(c *fiber.Ctx) error {
	var req cartPriceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	if len(req.ListingIDs) > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "too many items"})
	}
	for _, id := range req.ListingIDs {
		if _, ok := validate.ID(id); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid listing id"})
		}
	}

	totals, err := h.Cart.Price(req.ListingIDs)
	if err != nil {
		return respondErr(c, "cart.price", err)
	}
	return c.JSON(fiber.Map{
		"subtotal":  totals.Subtotal,
		"escrowFee": totals.EscrowFee,
		"total":     totals.Total,
	})
}
