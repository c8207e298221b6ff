package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bloxmarket/internal/log"
	"bloxmarket/internal/repos"
	"bloxmarket/internal/validate"
)

type AdminHandler struct {
	Listings *repos.ListingRepo
}

// PendingListings is the moderation queue, oldest first.
func (h *AdminHandler) PendingListings(c *fiber.Ctx) error {
	listings, err := h.Listings.ListPendingReview()
	if err != nil {
		return respondErr(c, "admin.pending", err)
	}
	out := make([]listingResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResp(l))
	}
	return c.JSON(fiber.Map{"count": len(out), "listings": out})
}

type reviewReq struct {
	Action string `json:"action"` // approve | reject
}

// Review performs the moderation step that takes a listing live (or sends
// it back to draft with a rejected verification).
func (h *AdminHandler) Review(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	var err error
	switch req.Action {
	case "approve":
		err = h.Listings.Approve(id)
	case "reject":
		err = h.Listings.Reject(id)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be approve or reject"})
	}
	if err != nil {
		return respondErr(c, "admin.review", err)
	}
	applog.Audit(c, "admin.review", map[string]any{"listing_id": id, "action": req.Action})
	return c.JSON(fiber.Map{"ok": true})
}
